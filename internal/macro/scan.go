package macro

import "github.com/ObiWanKeoni/vial-gui/internal/action"

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenKeys
	tokenDelay
)

// token is one merged run produced by the scanner. Key runs keep raw codes;
// resolution happens in a later pass.
type token struct {
	kind   tokenKind
	text   []byte
	marker byte
	codes  []byte
	delay  uint16
}

type scanner struct {
	tokens []token
}

func (s *scanner) last() *token {
	if len(s.tokens) == 0 {
		return nil
	}
	return &s.tokens[len(s.tokens)-1]
}

func (s *scanner) literal(b byte) {
	if last := s.last(); last != nil && last.kind == tokenText {
		last.text = append(last.text, b)
		return
	}
	s.tokens = append(s.tokens, token{kind: tokenText, text: []byte{b}})
}

func (s *scanner) key(marker, code byte) {
	if last := s.last(); last != nil && last.kind == tokenKeys && last.marker == marker {
		last.codes = append(last.codes, code)
		return
	}
	s.tokens = append(s.tokens, token{kind: tokenKeys, marker: marker, codes: []byte{code}})
}

func (s *scanner) delay(ms uint16) {
	s.tokens = append(s.tokens, token{kind: tokenDelay, delay: ms})
}

// scanV1 tokenizes the version 1 grammar: a marker byte followed by a
// keycode, or a literal byte.
func scanV1(data []byte) []token {
	var s scanner
	for i := 0; i < len(data); {
		b := data[i]
		if !action.IsKeyMarker(b) {
			s.literal(b)
			i++
			continue
		}
		if i+2 > len(data) {
			break
		}
		s.key(b, data[i+1])
		i += 2
	}
	return s.tokens
}

// scanV2 tokenizes the version 2 grammar where every control token starts
// with QMKPrefix. Unknown prefixed pairs are skipped.
func scanV2(data []byte) []token {
	var s scanner
	for i := 0; i < len(data); {
		if data[i] != action.QMKPrefix {
			s.literal(data[i])
			i++
			continue
		}
		if i+2 > len(data) {
			break
		}
		code := data[i+1]
		switch {
		case action.IsKeyMarker(code):
			if i+3 > len(data) {
				return s.tokens
			}
			s.key(code, data[i+2])
			i += 3
		case code == action.DelayCode:
			if i+4 > len(data) {
				return s.tokens
			}
			s.delay(action.DecodeDelay(data[i+2], data[i+3]))
			i += 4
		default:
			i += 2
		}
	}
	return s.tokens
}
