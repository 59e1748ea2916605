// Package query holds the listing query-string codec shared by the site,
// the organizer dashboard, and the JSON API: facet filters encoded as a JSON
// object in the "filters" parameter, page/limit resolution, and the label
// helpers used to render facet names.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Query parameter names owned by the codec.
const (
	ParamFilters = "filters"
	ParamPage    = "page"
	ParamLimit   = "limit"
	ParamSearch  = "q"
)

// Filter keys understood by the listing surfaces.
const (
	KeyCategories = "categories"
	KeyStatus     = "status"
)

// ErrMalformedFilters is returned by ParseFilters when the filters parameter
// is not a JSON object of string arrays.
var ErrMalformedFilters = errors.New("malformed filters parameter")

// FilterParams maps a filter key to its selected values. A missing key means
// no filter is applied; a key with an empty slice means the filter was
// touched and then cleared.
type FilterParams map[string][]string

// Schema lists the filter keys a listing accepts. A nil Schema accepts every key.
type Schema []string

func (s Schema) allows(key string) bool {
	return s == nil || slices.Contains(s, key)
}

// DecodeFilters parses a raw filters value. An empty string decodes to an
// empty FilterParams without error.
func DecodeFilters(raw string) (FilterParams, error) {
	out := FilterParams{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	var decoded map[string][]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return FilterParams{}, fmt.Errorf("%w: %v", ErrMalformedFilters, err)
	}
	for key, values := range decoded {
		out[key] = normalize(values)
	}
	return out, nil
}

// ParseFilters decodes the filters parameter of params and keeps only the
// keys allowed by schema. On malformed input it returns an empty
// FilterParams together with the error, so callers can record the failure
// and carry on unfiltered.
func ParseFilters(params url.Values, schema Schema) (FilterParams, error) {
	decoded, err := DecodeFilters(params.Get(ParamFilters))
	if err != nil {
		return FilterParams{}, err
	}
	for key := range decoded {
		if !schema.allows(key) {
			delete(decoded, key)
		}
	}
	return decoded, nil
}

// Encode serializes f as a JSON object with sorted keys. Nil slices encode
// as empty arrays.
func (f FilterParams) Encode() string {
	clean := make(map[string][]string, len(f))
	for key, values := range f {
		if values == nil {
			values = []string{}
		}
		clean[key] = values
	}
	b, err := json.Marshal(clean)
	if err != nil {
		// map[string][]string always marshals.
		panic(err)
	}
	return string(b)
}

// Values returns the selected values for key, or an empty slice.
func (f FilterParams) Values(key string) []string {
	if v, ok := f[key]; ok && v != nil {
		return slices.Clone(v)
	}
	return []string{}
}

// Has reports whether value is selected under key.
func (f FilterParams) Has(key, value string) bool {
	return slices.Contains(f[key], value)
}

// Clone returns a deep copy of f.
func (f FilterParams) Clone() FilterParams {
	out := make(FilterParams, len(f))
	for key, values := range f {
		out[key] = slices.Clone(values)
	}
	return out
}

// FilterValues returns the values selected under key in the filters
// parameter of params. Missing or malformed state yields an empty slice.
func FilterValues(params url.Values, key string) []string {
	f, err := DecodeFilters(params.Get(ParamFilters))
	if err != nil {
		return []string{}
	}
	return f.Values(key)
}

// AddFilterValues returns a copy of params with values added to the set
// under key. Values already selected are not duplicated. params is not
// modified.
func AddFilterValues(params url.Values, key string, values ...string) url.Values {
	f := currentFilters(params)
	set := f[key]
	if set == nil {
		set = []string{}
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(set, v) {
			continue
		}
		set = append(set, v)
	}
	f[key] = set
	return withFilters(params, f)
}

// RemoveFilterValue returns a copy of params with value removed from the set
// under key. The key is kept with an empty set when its last value is
// removed; use RemoveFilterKey to drop it entirely. Removing a value that is
// not selected leaves the filters unchanged.
func RemoveFilterValue(params url.Values, key, value string) url.Values {
	f := currentFilters(params)
	set, ok := f[key]
	if !ok {
		return cloneValues(params)
	}
	f[key] = slices.DeleteFunc(slices.Clone(set), func(v string) bool { return v == value })
	if f[key] == nil {
		f[key] = []string{}
	}
	return withFilters(params, f)
}

// RemoveFilterKey returns a copy of params without key in its filters. When
// no keys remain the filters parameter is omitted.
func RemoveFilterKey(params url.Values, key string) url.Values {
	f := currentFilters(params)
	delete(f, key)
	return withFilters(params, f)
}

// WithoutPage returns a copy of params with the page parameter removed. Used
// when a filter change alters the result set.
func WithoutPage(params url.Values) url.Values {
	out := cloneValues(params)
	out.Del(ParamPage)
	return out
}

// currentFilters decodes params' filters, treating malformed state as empty.
func currentFilters(params url.Values) FilterParams {
	f, err := DecodeFilters(params.Get(ParamFilters))
	if err != nil {
		return FilterParams{}
	}
	return f
}

func withFilters(params url.Values, f FilterParams) url.Values {
	out := cloneValues(params)
	if len(f) == 0 {
		out.Del(ParamFilters)
		return out
	}
	out.Set(ParamFilters, f.Encode())
	return out
}

func cloneValues(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, v := range params {
		out[k] = slices.Clone(v)
	}
	return out
}

// normalize trims values, drops blanks, and removes duplicates while keeping
// first-seen order.
func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
