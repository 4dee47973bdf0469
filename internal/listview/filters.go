package listview

import (
	"net/url"
	"strings"
)

// FilterSet holds the active list filters as string key/value pairs.
// Absence of a key means "no filter applied": empty or whitespace-only
// values are never stored.
type FilterSet map[string]string

// FiltersFromValues extracts a FilterSet from URL or form values.
// When allowed is non-nil only the listed keys are read; a nil allow-list
// captures every named value. Empty values are dropped either way.
func FiltersFromValues(values url.Values, allowed []string) FilterSet {
	fs := FilterSet{}
	if allowed != nil {
		for _, key := range allowed {
			fs.set(key, values.Get(key))
		}
		return fs
	}
	for key := range values {
		fs.set(key, values.Get(key))
	}
	return fs
}

func (fs FilterSet) set(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fs[key] = value
}

// Get returns the value for key, or "" when the filter is not applied.
func (fs FilterSet) Get(key string) string {
	return fs[key]
}

// With returns a copy of the set with key set to value. The receiver is
// never mutated; filter sets are rebuilt per interaction.
func (fs FilterSet) With(key, value string) FilterSet {
	merged := fs.clone()
	merged.set(key, value)
	return merged
}

// Merge overlays other on top of the receiver and returns the result as a
// new set. Later sources win on key collisions.
func (fs FilterSet) Merge(other FilterSet) FilterSet {
	merged := fs.clone()
	for key, value := range other {
		merged.set(key, value)
	}
	return merged
}

func (fs FilterSet) clone() FilterSet {
	out := make(FilterSet, len(fs))
	for key, value := range fs {
		out[key] = value
	}
	return out
}
