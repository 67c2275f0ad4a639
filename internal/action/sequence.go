package action

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

const (
	TagTap  = "tap"
	TagDown = "down"
	TagUp   = "up"
)

// KeyAction is implemented by the variants carrying a key list: Tap, Down
// and Up.
type KeyAction interface {
	Action
	// Marker returns the wire marker byte of the variant.
	Marker() byte
	// KeyList returns the keys in send order.
	KeyList() []keycode.Key
}

// Tap presses and releases each key in turn.
type Tap struct{ Keys []keycode.Key }

// Down presses each key without releasing it.
type Down struct{ Keys []keycode.Key }

// Up releases each key.
type Up struct{ Keys []keycode.Key }

var (
	_ KeyAction = (*Tap)(nil)
	_ KeyAction = (*Down)(nil)
	_ KeyAction = (*Up)(nil)
)

// NewKeyAction returns the key variant for a wire marker, or nil when the
// marker is not TapCode, DownCode or UpCode.
func NewKeyAction(marker byte, keys []keycode.Key) KeyAction {
	switch marker {
	case TapCode:
		return &Tap{Keys: keys}
	case DownCode:
		return &Down{Keys: keys}
	case UpCode:
		return &Up{Keys: keys}
	}
	return nil
}

// IsKeyMarker reports whether b starts a key token.
func IsKeyMarker(b byte) bool {
	return b == TapCode || b == DownCode || b == UpCode
}

func (*Tap) action()  {}
func (*Down) action() {}
func (*Up) action()   {}

func (*Tap) Tag() string  { return TagTap }
func (*Down) Tag() string { return TagDown }
func (*Up) Tag() string   { return TagUp }

func (*Tap) Marker() byte  { return TapCode }
func (*Down) Marker() byte { return DownCode }
func (*Up) Marker() byte   { return UpCode }

func (a *Tap) KeyList() []keycode.Key  { return a.Keys }
func (a *Down) KeyList() []keycode.Key { return a.Keys }
func (a *Up) KeyList() []keycode.Key   { return a.Keys }

func (a *Tap) Serialize(v Version) ([]byte, error)  { return serializeKeys(TapCode, a.Keys, v) }
func (a *Down) Serialize(v Version) ([]byte, error) { return serializeKeys(DownCode, a.Keys, v) }
func (a *Up) Serialize(v Version) ([]byte, error)   { return serializeKeys(UpCode, a.Keys, v) }

func (a *Tap) Save() Record  { return saveKeys(TagTap, a.Keys) }
func (a *Down) Save() Record { return saveKeys(TagDown, a.Keys) }
func (a *Up) Save() Record   { return saveKeys(TagUp, a.Keys) }

func (a *Tap) Restore(rec Record, keys keycode.Resolver) (err error) {
	a.Keys, err = restoreKeys(rec, keys)
	return err
}

func (a *Down) Restore(rec Record, keys keycode.Resolver) (err error) {
	a.Keys, err = restoreKeys(rec, keys)
	return err
}

func (a *Up) Restore(rec Record, keys keycode.Resolver) (err error) {
	a.Keys, err = restoreKeys(rec, keys)
	return err
}

// serializeKeys emits one token per key: (marker, code) for v1 and
// (prefix, marker, code) from v2 on.
func serializeKeys(marker byte, keys []keycode.Key, v Version) ([]byte, error) {
	if err := checkVersion(v); err != nil {
		return nil, err
	}
	width := 2
	if v >= V2 {
		width = 3
	}
	out := make([]byte, 0, width*len(keys))
	for _, k := range keys {
		// code 0 (KC_NO) would collide with the macro separator
		if k.Code == 0 || k.Code > 0xFF {
			return nil, fmt.Errorf("%w: %s", ErrKeyOutOfRange, k)
		}
		if v >= V2 {
			out = append(out, QMKPrefix)
		}
		out = append(out, marker, byte(k.Code))
	}
	return out, nil
}

func saveKeys(tag string, keys []keycode.Key) Record {
	rec := make(Record, 0, len(keys)+1)
	rec = append(rec, tag)
	for _, k := range keys {
		rec = append(rec, k.String())
	}
	return rec
}

func restoreKeys(rec Record, keys keycode.Resolver) ([]keycode.Key, error) {
	if len(rec) == 0 {
		return nil, fmt.Errorf("%w: empty key record", ErrMalformedRecord)
	}
	var names []string
	if err := mapstructure.WeakDecode([]any(rec[1:]), &names); err != nil {
		return nil, fmt.Errorf("%w: key names: %v", ErrMalformedRecord, err)
	}
	out := make([]keycode.Key, 0, len(names))
	for _, name := range names {
		k, ok := keys.FromName(name)
		if !ok || k.Code == 0 || k.Code > 0xFF {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}
