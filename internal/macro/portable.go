package macro

import (
	"fmt"
	"reflect"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

// Portable converts macros to their portable record lists.
func Portable(macros []Macro) [][]action.Record {
	out := make([][]action.Record, len(macros))
	for i, m := range macros {
		out[i] = m.Records()
	}
	return out
}

// Dropped describes one record skipped by FromPortable.
type Dropped struct {
	Macro  int
	Record any
	Err    error
}

// FromPortable rebuilds macros from a decoded portable layout. ok is false
// when v is not a list. Entries that are not lists become empty macros;
// records with unknown tags, invalid content or no encoding for version v
// are skipped and reported in dropped.
func FromPortable(v any, version action.Version, keys keycode.Resolver) (macros []Macro, dropped []Dropped, ok bool) {
	entries, ok := asList(v)
	if !ok {
		return nil, nil, false
	}
	macros = make([]Macro, 0, len(entries))
	for i, entry := range entries {
		recs, _ := asList(entry)
		m := Macro{}
		for _, raw := range recs {
			act, err := restore(raw, version, keys)
			if act == nil {
				dropped = append(dropped, Dropped{Macro: i, Record: raw, Err: err})
				continue
			}
			m = append(m, act)
		}
		macros = append(macros, m)
	}
	return macros, dropped, true
}

func restore(raw any, version action.Version, keys keycode.Resolver) (action.Action, error) {
	fields, ok := asList(raw)
	if !ok {
		return nil, fmt.Errorf("%w: record is %T", action.ErrMalformedRecord, raw)
	}
	act, ok, err := action.FromRecord(action.Record(fields), keys)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unknown record tag %v", fields)
	}
	// e.g. a delay imported for a version 1 device
	if _, err := act.Serialize(version); err != nil {
		return nil, err
	}
	return act, nil
}

// asList converts any slice value (as produced by JSON, YAML or MsgPack
// decoders, or typed layouts) to []any.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case action.Record:
		return []any(t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// byte strings are scalars, not lists
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
