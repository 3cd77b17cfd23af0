package assets

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetResolver_Resolve(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.json": {Data: []byte(`{"css/app.css":"css/app.3f2a.css"}`)},
	}
	ar, err := NewAssetResolverFromFS(fsys, "")
	require.NoError(t, err)

	assert.Equal(t, "/static/css/app.3f2a.css", ar.Resolve("css/app.css"))
	assert.Equal(t, "/static/js/htmx.min.js", ar.Resolve("js/htmx.min.js"))
}

func TestAssetResolver_MissingManifest(t *testing.T) {
	ar, err := NewAssetResolverFromFS(fstest.MapFS{}, "manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "/static/css/app.css", ar.Resolve("css/app.css"))
}

func TestAssetResolver_BadManifest(t *testing.T) {
	_, err := NewAssetResolverFromFS(fstest.MapFS{"manifest.json": {Data: []byte("{")}}, "")
	require.Error(t, err)
}

func TestAssetResolver_NilReceiver(t *testing.T) {
	var ar *AssetResolver
	assert.Equal(t, "/static/x.css", ar.Resolve("x.css"))
}
