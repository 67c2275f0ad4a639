package macro

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

func k(t *testing.T, name string) keycode.Key {
	t.Helper()
	key, ok := keycode.Basic().FromName(name)
	require.True(t, ok, name)
	return key
}

func keys(t *testing.T, names ...string) []keycode.Key {
	t.Helper()
	out := make([]keycode.Key, 0, len(names))
	for _, n := range names {
		out = append(out, k(t, n))
	}
	return out
}

func requireMacro(t *testing.T, want, got Macro) {
	t.Helper()
	if !Equal(want, got) {
		t.Fatalf("macro mismatch\nwant: %v\ngot:  %v", Macro(want).Records(), got.Records())
	}
}

func TestDecodeV1MergesTaps(t *testing.T) {
	data := []byte{'A', 'B', action.TapCode, 0x04, action.TapCode, 0x05}
	got := Decode(data, action.V1, keycode.Basic())
	requireMacro(t, Macro{
		&action.Text{Content: "AB"},
		&action.Tap{Keys: keys(t, "KC_A", "KC_B")},
	}, got)
}

func TestDecodeV1MarkerChangeBreaksRun(t *testing.T) {
	data := []byte{
		action.DownCode, 0xE1,
		action.TapCode, 0x04,
		action.TapCode, 0x05,
		action.UpCode, 0xE1,
		'x',
		action.TapCode, 0x06,
	}
	got := Decode(data, action.V1, keycode.Basic())
	requireMacro(t, Macro{
		&action.Down{Keys: keys(t, "KC_LSHIFT")},
		&action.Tap{Keys: keys(t, "KC_A", "KC_B")},
		&action.Up{Keys: keys(t, "KC_LSHIFT")},
		&action.Text{Content: "x"},
		&action.Tap{Keys: keys(t, "KC_C")},
	}, got)
}

func TestDecodeV1TruncatedPair(t *testing.T) {
	got := Decode([]byte{'h', 'i', action.TapCode}, action.V1, keycode.Basic())
	requireMacro(t, Macro{&action.Text{Content: "hi"}}, got)
}

func TestDecodeV2MalformedRecovery(t *testing.T) {
	data := []byte{'A', action.QMKPrefix, 0xFF, 'B'}
	got := Decode(data, action.V2, keycode.Basic())
	requireMacro(t, Macro{&action.Text{Content: "AB"}}, got)
}

func TestDecodeV2Tokens(t *testing.T) {
	data := []byte{
		'o', 'k',
		action.QMKPrefix, action.TapCode, 0x04,
		action.QMKPrefix, action.TapCode, 0x05,
		action.QMKPrefix, action.DelayCode, 46, 2,
		action.QMKPrefix, action.DelayCode, 1, 1,
		action.QMKPrefix, action.TapCode, 0x06,
	}
	got := Decode(data, action.V2, keycode.Basic())
	requireMacro(t, Macro{
		&action.Text{Content: "ok"},
		&action.Tap{Keys: keys(t, "KC_A", "KC_B")},
		&action.Delay{Milliseconds: 300},
		&action.Delay{Milliseconds: 0},
		&action.Tap{Keys: keys(t, "KC_C")},
	}, got)
}

func TestDecodeV2Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"prefix only", []byte{'a', action.QMKPrefix}},
		{"key without code", []byte{'a', action.QMKPrefix, action.TapCode}},
		{"delay missing high byte", []byte{'a', action.QMKPrefix, action.DelayCode, 5}},
		{"delay missing both bytes", []byte{'a', action.QMKPrefix, action.DelayCode}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.data, action.V2, keycode.Basic())
			requireMacro(t, Macro{&action.Text{Content: "a"}}, got)
		})
	}
}

func TestDecodeUnresolvedCodesDropped(t *testing.T) {
	data := []byte{
		action.QMKPrefix, action.TapCode, 0xA5,
		action.QMKPrefix, action.TapCode, 0x04,
		action.QMKPrefix, action.DownCode, 0xA6,
	}
	got := Decode(data, action.V2, keycode.Basic())
	requireMacro(t, Macro{
		&action.Tap{Keys: keys(t, "KC_A")},
		&action.Down{Keys: []keycode.Key{}},
	}, got)
}

func TestDecodeV1SeesPrefixAsTap(t *testing.T) {
	// 0x01 is both the v2 prefix and the v1 tap marker
	data := []byte{action.QMKPrefix, action.TapCode, 0x04}
	got := Decode(data, action.V1, keycode.Basic())
	require.Len(t, got, 2)
	require.Equal(t, action.TagTap, got[0].Tag())
	require.Equal(t, []keycode.Key{k(t, "KC_TRNS")}, got[0].(*action.Tap).Keys)
	require.Equal(t, &action.Text{Content: "\x04"}, got[1])
}

func TestDecodeEmpty(t *testing.T) {
	require.Empty(t, Decode(nil, action.V2, keycode.Basic()))
	require.Empty(t, Decode(nil, action.V1, keycode.Basic()))
}

func TestDecodeArbitraryInputNeverPanics(t *testing.T) {
	data := make([]byte, 0, 1024)
	for i := 0; i < 1024; i++ {
		data = append(data, byte(i*37+i/3))
	}
	for start := 0; start < len(data); start += 7 {
		for _, v := range []action.Version{action.V1, action.V2} {
			require.NotPanics(t, func() { Decode(data[start:], v, keycode.Basic()) })
		}
	}
}

func TestEncodeConcatenates(t *testing.T) {
	m := Macro{
		&action.Text{Content: "ok"},
		&action.Tap{Keys: keys(t, "KC_A")},
		&action.Tap{Keys: keys(t, "KC_B")},
		&action.Delay{Milliseconds: 300},
	}
	out, err := Encode(m, action.V2)
	require.NoError(t, err)
	require.Equal(t, []byte{
		'o', 'k',
		action.QMKPrefix, action.TapCode, 0x04,
		action.QMKPrefix, action.TapCode, 0x05,
		action.QMKPrefix, action.DelayCode, 46, 2,
	}, out)

	// adjacent taps are not canonical, decoding merges them
	requireMacro(t, Macro{
		&action.Text{Content: "ok"},
		&action.Tap{Keys: keys(t, "KC_A", "KC_B")},
		&action.Delay{Milliseconds: 300},
	}, Decode(out, action.V2, keycode.Basic()))
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(Macro{&action.Delay{Milliseconds: 1}}, action.V1)
	require.ErrorIs(t, err, action.ErrUnsupportedVersion)
}

func TestRoundTripCanonical(t *testing.T) {
	macros := []Macro{
		{},
		{&action.Text{Content: "hello world"}},
		{
			&action.Down{Keys: keys(t, "KC_LCTRL", "KC_LSHIFT")},
			&action.Tap{Keys: keys(t, "KC_T")},
			&action.Up{Keys: keys(t, "KC_LSHIFT", "KC_LCTRL")},
			&action.Text{Content: "done"},
		},
		{
			&action.Delay{Milliseconds: 10},
			&action.Delay{Milliseconds: 64770},
			&action.Tap{Keys: keys(t, "KC_ENTER")},
			&action.Delay{Milliseconds: 255},
		},
	}
	for i, m := range macros {
		out, err := Encode(m, action.V2)
		require.NoError(t, err, "macro %d", i)
		require.False(t, bytes.Contains(out, []byte{0}), "macro %d", i)
		requireMacro(t, m, Decode(out, action.V2, keycode.Basic()))
	}

	v1 := macros[2]
	out, err := Encode(v1, action.V1)
	require.NoError(t, err)
	requireMacro(t, v1, Decode(out, action.V1, keycode.Basic()))
}

func TestDelayRoundTripFullRange(t *testing.T) {
	for ms := 0; ms <= action.MaxDelay; ms += 7 {
		m := Macro{&action.Delay{Milliseconds: uint16(ms)}}
		out, err := Encode(m, action.V2)
		require.NoError(t, err)
		got := Decode(out, action.V2, keycode.Basic())
		if !Equal(m, got) {
			t.Fatalf("delay %d round trip: %v", ms, got.Records())
		}
	}
}
