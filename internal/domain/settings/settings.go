// Package settings maps the API server's flat key/value settings list into typed
// form state and back.
package settings

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Entry is one key/value pair as stored by the API server.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Known setting keys.
const (
	KeySiteName          = "site.name"
	KeySupportEmail      = "site.support_email"
	KeyMaintenanceMode   = "site.maintenance_mode"
	KeyCurrency          = "billing.currency"
	KeyCommissionPercent = "referral.commission_percent"
	KeyCookieDays        = "referral.cookie_days"
	KeyPayoutThreshold   = "payout.threshold"
	KeyLeadHours         = "booking.lead_hours"
)

// Form is the typed settings state edited on the admin settings screen.
type Form struct {
	SiteName          string  `form:"site.name" validate:"required,max=120"`
	SupportEmail      string  `form:"site.support_email" validate:"omitempty,email"`
	MaintenanceMode   bool    `form:"site.maintenance_mode"`
	Currency          string  `form:"billing.currency" validate:"required,len=3,uppercase"`
	CommissionPercent float64 `form:"referral.commission_percent" validate:"gte=0,lte=100"`
	CookieDays        int     `form:"referral.cookie_days" validate:"gte=1,lte=365"`
	PayoutThreshold   float64 `form:"payout.threshold" validate:"gte=0"`
	LeadHours         int     `form:"booking.lead_hours" validate:"gte=0,lte=720"`

	// Extra carries keys this console does not model so saving never drops them.
	Extra map[string]string
}

// Defaults returns the form used for keys the server has never stored.
func Defaults() Form {
	return Form{
		Currency:          "USD",
		CommissionPercent: 10,
		CookieDays:        30,
		PayoutThreshold:   50,
		LeadHours:         24,
	}
}

// FieldError reports a stored value that could not be parsed into its typed field.
type FieldError struct {
	Key     string
	Value   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %q)", e.Key, e.Message, e.Value)
}

// IsKnown reports whether key maps to a Form field.
func IsKnown(key string) bool {
	switch key {
	case KeySiteName, KeySupportEmail, KeyMaintenanceMode, KeyCurrency,
		KeyCommissionPercent, KeyCookieDays, KeyPayoutThreshold, KeyLeadHours:
		return true
	}
	return false
}

// Normalize builds a Form from entries. Missing keys take defaults; values that
// fail to parse are reported and replaced by the default. When a key repeats,
// the last entry wins.
func Normalize(entries []Entry) (Form, []FieldError) {
	f := Defaults()
	var errs []FieldError
	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		val := strings.TrimSpace(e.Value)
		if key == "" {
			continue
		}
		if err := f.set(key, val); err != nil {
			errs = append(errs, *err)
		}
	}
	return f, errs
}

func (f *Form) set(key, val string) *FieldError {
	bad := func(msg string) *FieldError { return &FieldError{Key: key, Value: val, Message: msg} }
	def := Defaults()

	switch key {
	case KeySiteName:
		f.SiteName = val
	case KeySupportEmail:
		f.SupportEmail = val
	case KeyCurrency:
		f.Currency = strings.ToUpper(val)
	case KeyMaintenanceMode:
		if val == "" {
			f.MaintenanceMode = false
			return nil
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			f.MaintenanceMode = def.MaintenanceMode
			return bad("must be true or false")
		}
		f.MaintenanceMode = b
	case KeyCommissionPercent:
		n, err := parseFloat(val)
		if err != nil {
			f.CommissionPercent = def.CommissionPercent
			return bad("must be a number")
		}
		f.CommissionPercent = n
	case KeyPayoutThreshold:
		n, err := parseFloat(val)
		if err != nil {
			f.PayoutThreshold = def.PayoutThreshold
			return bad("must be a number")
		}
		f.PayoutThreshold = n
	case KeyCookieDays:
		n, err := strconv.Atoi(val)
		if err != nil {
			f.CookieDays = def.CookieDays
			return bad("must be a whole number")
		}
		f.CookieDays = n
	case KeyLeadHours:
		n, err := strconv.Atoi(val)
		if err != nil {
			f.LeadHours = def.LeadHours
			return bad("must be a whole number")
		}
		f.LeadHours = n
	default:
		if f.Extra == nil {
			f.Extra = make(map[string]string)
		}
		f.Extra[key] = val
	}
	return nil
}

// parseFloat accepts finite decimals with an optional trailing percent sign.
func parseFloat(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return n, nil
}

// Canonical returns f in the shape Normalize produces: an empty Extra is nil.
// Normalize(Flatten(f)) equals f.Canonical() for every valid form.
func (f Form) Canonical() Form {
	if len(f.Extra) == 0 {
		f.Extra = nil
	}
	return f
}

// Flatten is the inverse of Normalize. Output is sorted by key.
func Flatten(f Form) []Entry {
	out := []Entry{
		{Key: KeySiteName, Value: f.SiteName},
		{Key: KeySupportEmail, Value: f.SupportEmail},
		{Key: KeyMaintenanceMode, Value: strconv.FormatBool(f.MaintenanceMode)},
		{Key: KeyCurrency, Value: f.Currency},
		{Key: KeyCommissionPercent, Value: strconv.FormatFloat(f.CommissionPercent, 'f', -1, 64)},
		{Key: KeyCookieDays, Value: strconv.Itoa(f.CookieDays)},
		{Key: KeyPayoutThreshold, Value: strconv.FormatFloat(f.PayoutThreshold, 'f', -1, 64)},
		{Key: KeyLeadHours, Value: strconv.Itoa(f.LeadHours)},
	}
	for k, v := range f.Extra {
		if IsKnown(k) {
			continue
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Merge overlays known keys from posted onto current and returns the combined list.
// Unknown posted keys are ignored so the form cannot inject arbitrary settings.
func Merge(current, posted []Entry) []Entry {
	byKey := make(map[string]string, len(current)+len(posted))
	order := make([]string, 0, len(current)+len(posted))
	put := func(k, v string) {
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = v
	}
	for _, e := range current {
		put(strings.TrimSpace(e.Key), e.Value)
	}
	for _, e := range posted {
		if k := strings.TrimSpace(e.Key); IsKnown(k) {
			put(k, e.Value)
		}
	}
	out := make([]Entry, 0, len(order))
	for _, k := range order {
		out = append(out, Entry{Key: k, Value: byKey[k]})
	}
	return out
}
