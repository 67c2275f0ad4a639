package macro

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
	"github.com/ObiWanKeoni/vial-gui/internal/testutil"
)

func codec(count int, v action.Version) SetCodec {
	return SetCodec{Count: count, Version: v, Keys: keycode.Basic()}
}

func records(set []Macro) [][]action.Record {
	out := make([][]action.Record, len(set))
	for i, m := range set {
		out[i] = m.Records()
	}
	return out
}

func TestSetEncodeCountMismatch(t *testing.T) {
	c := codec(3, action.V2)
	for _, n := range []int{0, 2, 4} {
		out, err := c.Encode(make([]Macro, n))
		require.ErrorIs(t, err, ErrCountMismatch)
		require.Nil(t, out)
	}
}

func TestSetEncodeFraming(t *testing.T) {
	c := codec(3, action.V2)
	out, err := c.Encode([]Macro{
		{&action.Text{Content: "a"}},
		{},
		{&action.Text{Content: "bc"}},
	})
	require.NoError(t, err)
	require.Equal(t, []byte("a\x00\x00bc\x00"), out)
}

func TestSetEncodeZeroCount(t *testing.T) {
	out, err := codec(0, action.V2).Encode(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, out)
}

func TestSetEncodePropagatesActionErrors(t *testing.T) {
	_, err := codec(1, action.V1).Encode([]Macro{{&action.Delay{Milliseconds: 5}}})
	require.ErrorIs(t, err, action.ErrUnsupportedVersion)
}

func TestSetDecodeAlwaysCount(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"nil", nil},
		{"no separators", []byte("abc")},
		{"one separator", []byte("abc\x00")},
		{"exact", []byte("a\x00b\x00c\x00d\x00")},
		{"extra separators", bytes.Repeat([]byte{0}, 40)},
		{"garbage tail", append([]byte("a\x00b\x00c\x00d\x00"), 0xFF, 0xFF, 0x00, 'z')},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codec(4, action.V2).Decode(tt.buf)
			require.Len(t, got, 4)
			for _, m := range got {
				require.NotNil(t, m)
			}
		})
	}
}

func TestSetDecodeDropsExtraPieces(t *testing.T) {
	got := codec(2, action.V2).Decode([]byte("one\x00two\x00three\x00"))
	require.Len(t, got, 2)
	require.Equal(t, "two", got[1][0].(*action.Text).Content)
}

func TestSetRoundTrip(t *testing.T) {
	c := codec(3, action.V2)
	set := []Macro{
		{&action.Text{Content: "abc"}, &action.Delay{Milliseconds: 1000}},
		{},
		{
			&action.Down{Keys: keys(t, "KC_LALT")},
			&action.Tap{Keys: keys(t, "KC_F4")},
			&action.Up{Keys: keys(t, "KC_LALT")},
		},
	}
	out, err := c.Encode(set)
	require.NoError(t, err)
	require.Equal(t, 3, bytes.Count(out, []byte{0}))

	got := c.Decode(out)
	require.Len(t, got, 3)
	for i := range set {
		requireMacro(t, set[i], got[i])
	}
}

func TestSetNormalize(t *testing.T) {
	c := codec(3, action.V2)
	require.Equal(t, []byte("\x00\x00\x00"), c.Normalize(nil))
	require.Equal(t, []byte("a\x00b\x00\x00"), c.Normalize([]byte("a\x00b")))
	require.Equal(t, []byte("a\x00b\x00c\x00"), c.Normalize([]byte("a\x00b\x00c\x00\xFF\xFF\x00\xEE")))
	// unresolvable codes survive normalization byte for byte
	raw := []byte{action.QMKPrefix, action.TapCode, 0xA5, 0x00, 0x00, 0x00}
	require.Equal(t, raw, c.Normalize(raw))
}

func TestSetPad(t *testing.T) {
	c := codec(2, action.V2)
	short := c.Pad([]Macro{{&action.Text{Content: "x"}}})
	require.Len(t, short, 2)
	require.NotNil(t, short[1])
	require.Empty(t, short[1])

	long := c.Pad([]Macro{{}, {}, {&action.Text{Content: "dropped"}}})
	require.Len(t, long, 2)
}

func TestSetDecodeFixtures(t *testing.T) {
	tests := []struct {
		name    string
		version action.Version
		count   int
	}{
		{"v2_three_macros", action.V2, 3},
		{"v1_two_macros", action.V1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := testutil.LoadBuffer(t, "buffers/"+tt.name+".hex")
			var expected any
			testutil.LoadJSON(t, "buffers/"+tt.name+".json", &expected)

			got := codec(tt.count, tt.version).Decode(buf)
			require.JSONEq(t, testutil.JSON(t, expected), testutil.JSON(t, records(got)))
		})
	}
}
