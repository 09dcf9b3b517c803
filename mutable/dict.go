package mutable

import (
	"sort"

	"github.com/phucvin/fleece/errs"
	"github.com/phucvin/fleece/format"
	"github.com/phucvin/fleece/value"
)

// tombstone marks a key removed from a Dict's overlay, distinct from an
// explicit JSON null (which is represented by a plain Go nil entry).
type tombstone struct{}

// Dict is a copy-on-write overlay over an optional source reader dict.
// Get consults the change map first, falling through to source; Keys
// enumerates source.Keys() union changes minus tombstones. It satisfies
// the encoder's dictLike interface directly, so a Dict can be passed to
// encoder.Encode like any other value.
type Dict struct {
	source  *value.Dict
	changes map[string]any
}

// NewDict creates an empty Dict with no backing source.
func NewDict() *Dict {
	return &Dict{changes: make(map[string]any)}
}

// FromDict wraps an existing reader dict as the overlay's source.
func FromDict(d value.Dict) *Dict {
	return &Dict{source: &d, changes: make(map[string]any)}
}

// DictFromValue parses v as a dict and wraps it, per FromDict.
func DictFromValue(v value.Value) (*Dict, error) {
	d, err := v.AsDict()
	if err != nil {
		return nil, err
	}

	return FromDict(d), nil
}

// Get returns the current value at key, consulting the change map before
// falling through to source. Returns nil if key is absent or tombstoned,
// which is indistinguishable from an explicit null stored at key — use
// Has to tell them apart.
func (d *Dict) Get(key string) any {
	if v, ok := d.changes[key]; ok {
		if _, dead := v.(tombstone); dead {
			return nil
		}

		return v
	}

	if d.source == nil {
		return nil
	}

	sv, err := d.source.Get(key)
	if err != nil || sv.IsAbsent() {
		return nil
	}

	return sv
}

// Has reports whether key is present (possibly with an explicit null
// value), as opposed to absent or removed.
func (d *Dict) Has(key string) bool {
	if v, ok := d.changes[key]; ok {
		_, dead := v.(tombstone)

		return !dead
	}

	if d.source == nil {
		return false
	}

	sv, err := d.source.Get(key)

	return err == nil && !sv.IsAbsent()
}

// Set records an edit for key, visible to subsequent Get/Keys calls and
// to the encoder on re-encode.
func (d *Dict) Set(key string, v any) {
	d.changes[key] = v
}

// Remove tombstones key: it is omitted from Keys and Get returns nil for
// it, even if source still holds a value there.
func (d *Dict) Remove(key string) {
	d.changes[key] = tombstone{}
}

// Keys returns every live key (source keys plus added keys, minus
// tombstoned keys), sorted ascending. The encoder re-sorts on its own
// before emitting entries regardless, but a sorted Keys keeps this type
// useful on its own.
func (d *Dict) Keys() []string {
	set := make(map[string]struct{})

	if d.source != nil {
		for _, k := range d.source.Keys() {
			set[k] = struct{}{}
		}
	}

	for k, v := range d.changes {
		if _, dead := v.(tombstone); dead {
			delete(set, k)

			continue
		}

		set[k] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// GetMutable promotes the child dict or array at key to its own overlay,
// writing it back into the change map so subsequent mutations through
// the returned handle are visible to this Dict (and thus to the
// encoder). Returns (nil, nil) if key is absent or removed. A value
// already recorded with Set (or by an earlier GetMutable) is returned as
// is, whatever its type; a source dict or array is promoted to a *Dict
// or an *Array; any other source value yields errs.ErrWrongKind.
func (d *Dict) GetMutable(key string) (any, error) {
	if v, ok := d.changes[key]; ok {
		if _, dead := v.(tombstone); dead {
			return nil, nil
		}

		return v, nil
	}

	if d.source == nil {
		return nil, nil
	}

	sv, err := d.source.Get(key)
	if err != nil {
		return nil, err
	}

	if sv.IsAbsent() {
		return nil, nil
	}

	child, err := promoteValue(sv)
	if err != nil {
		return nil, err
	}

	d.changes[key] = child

	return child, nil
}

// promoteValue converts a reader handle over a dict or array into its
// mutable overlay. Any other kind has nothing to promote into.
func promoteValue(v value.Value) (any, error) {
	switch v.Kind() {
	case format.KindDict:
		sd, err := v.AsDict()
		if err != nil {
			return nil, err
		}

		return FromDict(sd), nil
	case format.KindArray:
		sa, err := v.AsArray()
		if err != nil {
			return nil, err
		}

		return FromArray(sa), nil
	default:
		return nil, errs.ErrWrongKind
	}
}
