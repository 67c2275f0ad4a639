package keycode

import "fmt"

var namedKeys = []Key{
	{0x00, "KC_NO"},
	{0x01, "KC_TRNS"},
	{0x28, "KC_ENTER"},
	{0x29, "KC_ESCAPE"},
	{0x2A, "KC_BSPACE"},
	{0x2B, "KC_TAB"},
	{0x2C, "KC_SPACE"},
	{0x2D, "KC_MINUS"},
	{0x2E, "KC_EQUAL"},
	{0x2F, "KC_LBRACKET"},
	{0x30, "KC_RBRACKET"},
	{0x31, "KC_BSLASH"},
	{0x32, "KC_NONUS_HASH"},
	{0x33, "KC_SCOLON"},
	{0x34, "KC_QUOTE"},
	{0x35, "KC_GRAVE"},
	{0x36, "KC_COMMA"},
	{0x37, "KC_DOT"},
	{0x38, "KC_SLASH"},
	{0x39, "KC_CAPSLOCK"},
	{0x46, "KC_PSCREEN"},
	{0x47, "KC_SCROLLLOCK"},
	{0x48, "KC_PAUSE"},
	{0x49, "KC_INSERT"},
	{0x4A, "KC_HOME"},
	{0x4B, "KC_PGUP"},
	{0x4C, "KC_DELETE"},
	{0x4D, "KC_END"},
	{0x4E, "KC_PGDOWN"},
	{0x4F, "KC_RIGHT"},
	{0x50, "KC_LEFT"},
	{0x51, "KC_DOWN"},
	{0x52, "KC_UP"},
	{0x53, "KC_NUMLOCK"},
	{0x54, "KC_KP_SLASH"},
	{0x55, "KC_KP_ASTERISK"},
	{0x56, "KC_KP_MINUS"},
	{0x57, "KC_KP_PLUS"},
	{0x58, "KC_KP_ENTER"},
	{0x63, "KC_KP_DOT"},
	{0x64, "KC_NONUS_BSLASH"},
	{0x65, "KC_APPLICATION"},
	{0x66, "KC_POWER"},
	{0x67, "KC_KP_EQUAL"},
	{0xE0, "KC_LCTRL"},
	{0xE1, "KC_LSHIFT"},
	{0xE2, "KC_LALT"},
	{0xE3, "KC_LGUI"},
	{0xE4, "KC_RCTRL"},
	{0xE5, "KC_RSHIFT"},
	{0xE6, "KC_RALT"},
	{0xE7, "KC_RGUI"},
}

func basicKeys() []Key {
	keys := make([]Key, 0, 128)
	for i := 0; i < 26; i++ {
		keys = append(keys, Key{Code: uint16(0x04 + i), Name: fmt.Sprintf("KC_%c", 'A'+i)})
	}
	// KC_1..KC_9 then KC_0
	for i := 0; i < 9; i++ {
		keys = append(keys, Key{Code: uint16(0x1E + i), Name: fmt.Sprintf("KC_%d", i+1)})
	}
	keys = append(keys, Key{Code: 0x27, Name: "KC_0"})
	for i := 0; i < 12; i++ {
		keys = append(keys, Key{Code: uint16(0x3A + i), Name: fmt.Sprintf("KC_F%d", i+1)})
	}
	for i := 0; i < 12; i++ {
		keys = append(keys, Key{Code: uint16(0x68 + i), Name: fmt.Sprintf("KC_F%d", i+13)})
	}
	for i := 0; i < 9; i++ {
		keys = append(keys, Key{Code: uint16(0x59 + i), Name: fmt.Sprintf("KC_KP_%d", i+1)})
	}
	keys = append(keys, Key{Code: 0x62, Name: "KC_KP_0"})
	return append(keys, namedKeys...)
}
