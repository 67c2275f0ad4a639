// Package macro encodes and decodes macros in the keyboard's macro buffer
// format.
//
// A single macro is a byte string without 0x00. Decoding is tolerant: it
// never fails and degrades to the longest well-formed prefix, skipping
// malformed prefixed pairs on version 2. Adjacent literal bytes merge into one
// Text action and adjacent key tokens with the same marker merge into one key
// action, so decode(encode(m)) == m only holds for macros without adjacent
// same-marker key actions.
package macro

import (
	"bytes"
	"fmt"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

// Macro is an ordered list of actions.
type Macro []action.Action

// Equal reports whether two macros hold equal actions in the same order.
func Equal(a, b Macro) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !action.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Records returns the portable form of the macro.
func (m Macro) Records() []action.Record {
	out := make([]action.Record, 0, len(m))
	for _, act := range m {
		out = append(out, act.Save())
	}
	return out
}

// Decode parses one macro. Raw keycodes unknown to keys are left out of the
// key lists.
func Decode(data []byte, v action.Version, keys keycode.Resolver) Macro {
	var tokens []token
	if v >= action.V2 {
		tokens = scanV2(data)
	} else {
		tokens = scanV1(data)
	}
	return toActions(tokens, keys)
}

func toActions(tokens []token, keys keycode.Resolver) Macro {
	out := make(Macro, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.kind {
		case tokenText:
			out = append(out, &action.Text{Content: string(tok.text)})
		case tokenDelay:
			out = append(out, &action.Delay{Milliseconds: tok.delay})
		case tokenKeys:
			resolved := make([]keycode.Key, 0, len(tok.codes))
			for _, code := range tok.codes {
				if k, ok := keys.Lookup(uint16(code)); ok {
					resolved = append(resolved, k)
				}
			}
			out = append(out, action.NewKeyAction(tok.marker, resolved))
		}
	}
	return out
}

// Encode concatenates the wire bytes of every action.
func Encode(m Macro, v action.Version) ([]byte, error) {
	var buf bytes.Buffer
	for i, act := range m {
		data, err := act.Serialize(v)
		if err != nil {
			return nil, fmt.Errorf("action %d (%s): %w", i, act.Tag(), err)
		}
		buf.Write(data)
	}
	if bytes.IndexByte(buf.Bytes(), separator) >= 0 {
		return nil, fmt.Errorf("encoded macro contains separator byte 0x%02X", separator)
	}
	return buf.Bytes(), nil
}
