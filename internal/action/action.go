// Package action defines the macro steps stored on the keyboard and their
// wire and portable encodings.
//
// The variant set is closed: Text, Tap, Down, Up and Delay. Each variant owns
// its per-version byte encoding (Serialize) and its portable record shape
// (Save/Restore). Variants are constructed by tag through the registry so the
// export and import paths use the same table.
package action

import (
	"errors"
	"fmt"

	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

// Version selects the macro wire format.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

// Wire bytes shared by the encoders and the macro decoder.
const (
	QMKPrefix byte = 0x01
	TapCode   byte = 0x01
	DownCode  byte = 0x02
	UpCode    byte = 0x03
	DelayCode byte = 0x04
)

// MaxDelay is the largest delay expressible with two stuffed bytes.
const MaxDelay = 254 + 254*255

var (
	ErrUnsupportedVersion = errors.New("action: unsupported protocol version")
	ErrKeyOutOfRange      = errors.New("action: keycode does not fit in one byte")
	ErrMalformedRecord    = errors.New("action: malformed record")
)

// Action is one macro step.
type Action interface {
	// Tag names the variant in portable records.
	Tag() string
	// Serialize returns the wire bytes of the action for the given version.
	Serialize(v Version) ([]byte, error)
	// Save returns the portable record of the action.
	Save() Record
	// Restore replaces the action content from a portable record.
	Restore(rec Record, keys keycode.Resolver) error

	action()
}

// Record is the portable form of an action: a tag followed by
// variant-specific values.
type Record []any

// Tag returns the record tag if the first element is a string.
func (r Record) Tag() (string, bool) {
	if len(r) == 0 {
		return "", false
	}
	tag, ok := r[0].(string)
	return tag, ok
}

// Equal reports whether two actions have the same variant and content.
func Equal(a, b Action) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch x := a.(type) {
	case *Text:
		return x.Content == b.(*Text).Content
	case *Delay:
		return x.Milliseconds == b.(*Delay).Milliseconds
	case KeyAction:
		return equalKeys(x.KeyList(), b.(KeyAction).KeyList())
	}
	return false
}

func equalKeys(a, b []keycode.Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Code != b[i].Code {
			return false
		}
	}
	return true
}

func checkVersion(v Version) error {
	if v < V1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return nil
}
