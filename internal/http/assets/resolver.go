package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// DefaultManifestPath is the manifest location inside the static filesystem.
const DefaultManifestPath = "manifest.json"

// AssetResolver resolves logical asset names to fingerprinted filenames using manifest.json.
// A missing manifest is not an error; names then resolve to themselves.
type AssetResolver struct {
	mu           sync.RWMutex
	manifest     map[string]string
	manifestPath string
	fsys         fs.FS
}

// NewAssetResolverFromFS creates a resolver that reads the manifest from fsys.
func NewAssetResolverFromFS(fsys fs.FS, manifestPath string) (*AssetResolver, error) {
	if fsys == nil {
		return nil, errors.New("asset filesystem is required")
	}
	if manifestPath == "" {
		manifestPath = DefaultManifestPath
	}
	ar := &AssetResolver{fsys: fsys, manifestPath: manifestPath, manifest: map[string]string{}}
	return ar, ar.Reload()
}

// Reload re-reads the manifest.
func (ar *AssetResolver) Reload() error {
	data, err := fs.ReadFile(ar.fsys, ar.manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("read asset manifest: %w", err)
	}

	manifest := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("parse asset manifest %s: %w", ar.manifestPath, err)
		}
	}

	ar.mu.Lock()
	ar.manifest = manifest
	ar.mu.Unlock()
	return nil
}

// Resolve returns the public path for a logical asset name.
func (ar *AssetResolver) Resolve(logicalName string) string {
	if ar == nil {
		return "/static/" + logicalName
	}
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	if hashed, ok := ar.manifest[logicalName]; ok {
		return "/static/" + hashed
	}
	return "/static/" + logicalName
}
