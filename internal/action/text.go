package action

import (
	"bytes"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

// TagText identifies Text records.
const TagText = "text"

// Text types literal characters. Content holds the raw bytes sent to the
// keyboard.
type Text struct {
	Content string
}

func (*Text) action() {}

// Tag implements Action.
func (*Text) Tag() string { return TagText }

// Serialize implements Action. NUL bytes are dropped since 0x00 separates
// macros in the device buffer.
func (t *Text) Serialize(v Version) ([]byte, error) {
	if err := checkVersion(v); err != nil {
		return nil, err
	}
	return bytes.ReplaceAll([]byte(t.Content), []byte{0}, nil), nil
}

// Save implements Action.
func (t *Text) Save() Record {
	return Record{TagText, t.Content}
}

// Restore implements Action.
func (t *Text) Restore(rec Record, _ keycode.Resolver) error {
	if len(rec) != 2 {
		return fmt.Errorf("%w: text expects 1 value, got %d", ErrMalformedRecord, len(rec)-1)
	}
	var content string
	if err := mapstructure.WeakDecode(rec[1], &content); err != nil {
		return fmt.Errorf("%w: text: %v", ErrMalformedRecord, err)
	}
	t.Content = content
	return nil
}
