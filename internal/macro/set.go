package macro

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

const separator byte = 0x00

// ErrCountMismatch is returned when a macro set does not hold exactly the
// device macro count.
var ErrCountMismatch = errors.New("macro count mismatch")

// SetCodec frames the device's fixed number of macros in one NUL-separated
// buffer.
type SetCodec struct {
	Count   int
	Version action.Version
	Keys    keycode.Resolver
}

// Encode serializes all macros. macros must hold exactly Count entries.
func (c SetCodec) Encode(macros []Macro) ([]byte, error) {
	if len(macros) != c.Count {
		return nil, fmt.Errorf("%w: expected %d macros, got %d", ErrCountMismatch, c.Count, len(macros))
	}
	pieces := make([][]byte, len(macros))
	for i, m := range macros {
		data, err := Encode(m, c.Version)
		if err != nil {
			return nil, fmt.Errorf("macro %d: %w", i, err)
		}
		pieces[i] = data
	}
	out := bytes.Join(pieces, []byte{separator})
	return append(out, separator), nil
}

// Decode splits buf into exactly Count macros. Missing macros decode as
// empty and pieces past Count are ignored.
func (c SetCodec) Decode(buf []byte) []Macro {
	pieces := c.split(buf)
	out := make([]Macro, len(pieces))
	for i, p := range pieces {
		out[i] = Decode(p, c.Version, c.Keys)
	}
	return out
}

// Normalize rewrites buf as exactly Count NUL-terminated records without
// decoding them, dropping any trailing partial record.
func (c SetCodec) Normalize(buf []byte) []byte {
	pieces := c.split(buf)
	out := bytes.Join(pieces, []byte{separator})
	return append(out, separator)
}

// Pad returns macros resized to Count, appending empty macros or dropping
// the excess.
func (c SetCodec) Pad(macros []Macro) []Macro {
	out := make([]Macro, c.Count)
	copy(out, macros)
	for i := range out {
		if out[i] == nil {
			out[i] = Macro{}
		}
	}
	return out
}

func (c SetCodec) split(buf []byte) [][]byte {
	pieces := bytes.Split(buf, []byte{separator})
	out := make([][]byte, c.Count)
	copy(out, pieces)
	return out
}
