// SPDX-License-Identifier: MPL-2.0

package upackmeta

import "encoding/json"

// Extras is an insertion-ordered collection of metadata keys that are not
// recognized by the typed models in this package. Values are kept as raw
// JSON so arbitrary caller-defined structure survives a load/save cycle
// untouched.
//
// The zero value is ready to use.
type Extras struct {
	keys   []string
	values map[string]json.RawMessage
}

// Len returns the number of stored keys.
func (e *Extras) Len() int { return len(e.keys) }

// Keys returns the stored keys in insertion order. The returned slice is a
// copy and may be modified by the caller.
func (e *Extras) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Get returns the raw value stored under key and whether it was present.
func (e *Extras) Get(key string) (json.RawMessage, bool) {
	v, ok := e.values[key]
	return v, ok
}

// GetString returns the value under key decoded as a JSON string.
// The second result is false when the key is absent or not a string.
func (e *Extras) GetString(key string) (string, bool) {
	raw, ok := e.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set stores raw under key, appending to the key order when the key is new
// and replacing the value in place when it already exists.
func (e *Extras) Set(key string, raw json.RawMessage) {
	if e.values == nil {
		e.values = make(map[string]json.RawMessage)
	}
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = raw
}

// SetString stores s under key as a JSON string.
func (e *Extras) SetString(key, s string) {
	raw, _ := json.Marshal(s)
	e.Set(key, raw)
}

// Delete removes key, returning whether it was present.
func (e *Extras) Delete(key string) bool {
	if _, ok := e.values[key]; !ok {
		return false
	}
	delete(e.values, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
	return true
}

// clone returns a deep-enough copy: keys are copied, raw values are shared
// (they are never mutated in place).
func (e *Extras) clone() Extras {
	if len(e.keys) == 0 {
		return Extras{}
	}
	out := Extras{
		keys:   make([]string, len(e.keys)),
		values: make(map[string]json.RawMessage, len(e.values)),
	}
	copy(out.keys, e.keys)
	for k, v := range e.values {
		out.values[k] = v
	}
	return out
}
