package device

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/emulator"
	"github.com/ObiWanKeoni/vial-gui/internal/protocol"
	"github.com/ObiWanKeoni/vial-gui/internal/testutil"
)

type recordingUnlocker struct {
	calls *[]string
	fail  error
}

func (u recordingUnlocker) Unlock(context.Context) error {
	*u.calls = append(*u.calls, "unlock")
	return u.fail
}

func (u recordingUnlocker) Lock(context.Context) error {
	*u.calls = append(*u.calls, "lock")
	return nil
}

// orderSender records sends into the same call log as the unlocker.
type orderSender struct {
	inner protocol.Sender
	calls *[]string
}

func (s orderSender) Send(ctx context.Context, msg []byte, retries int) ([]byte, error) {
	*s.calls = append(*s.calls, protocol.CommandName(msg[0]))
	return s.inner.Send(ctx, msg, retries)
}

func loaded(t *testing.T, dev *emulator.Device, opts ...Option) *Session {
	t.Helper()
	s := newSession(t, dev, opts...)
	require.NoError(t, s.Reload(context.Background()))
	dev.ResetRequests()
	return s
}

func parseLayout(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

func TestExportFixture(t *testing.T) {
	buf := testutil.LoadBuffer(t, "buffers/v2_three_macros.hex")
	dev := emulator.NewWithImage(3, append(buf, make([]byte, 200)...))
	s := loaded(t, dev)

	exported, err := s.Export()
	require.NoError(t, err)

	var expected any
	testutil.LoadJSON(t, "buffers/v2_three_macros.json", &expected)
	require.JSONEq(t, testutil.JSON(t, expected), testutil.JSON(t, exported))
}

func TestImportExportRoundTrip(t *testing.T) {
	dev := emulator.New(3, 200, 0)
	s := loaded(t, dev)

	layout := parseLayout(t, `[
		[["text", "Hi"], ["tap", "KC_A", "KC_B"], ["delay", 300]],
		[["down", "KC_LCTRL"], ["tap", "KC_C"], ["up", "KC_LCTRL"]],
		[]
	]`)
	report, err := s.Import(context.Background(), layout)
	require.NoError(t, err)
	require.True(t, report.Written)
	require.Zero(t, report.DroppedRecords)

	want := testutil.LoadBuffer(t, "buffers/v2_three_macros.hex")
	want = want[:len(want)-3] // strip the uninitialized tail of the fixture
	require.Equal(t, want, s.State().Buffer)
	require.Equal(t, want, dev.Image()[:len(want)])

	exported, err := s.Export()
	require.NoError(t, err)
	require.JSONEq(t, testutil.JSON(t, layout), testutil.JSON(t, exported))

	// reload from the device sees the same content
	fresh := loaded(t, dev)
	require.Equal(t, want, fresh.State().Buffer)
}

func TestImportTruncatesMacroCount(t *testing.T) {
	dev := emulator.New(2, 200, 0)
	s := loaded(t, dev)

	report, err := s.Import(context.Background(), parseLayout(t, `[[["text","a"]],[["text","b"]],[["text","c"]]]`))
	require.NoError(t, err)
	require.Equal(t, 1, report.DroppedMacros)

	macros, err := s.Macros()
	require.NoError(t, err)
	require.Len(t, macros, 2)
	require.Equal(t, []byte("a\x00b\x00"), s.State().Buffer)
}

func TestImportPadsMacroCount(t *testing.T) {
	dev := emulator.New(2, 200, 0)
	s := loaded(t, dev)

	_, err := s.Import(context.Background(), parseLayout(t, `[[["text","a"]]]`))
	require.NoError(t, err)

	macros, err := s.Macros()
	require.NoError(t, err)
	require.Len(t, macros, 2)
	require.Empty(t, macros[1])
	require.Equal(t, []byte("a\x00\x00"), s.State().Buffer)
}

func TestImportNonListIsNoop(t *testing.T) {
	dev := emulator.New(2, 200, 0)
	s := loaded(t, dev)

	for _, v := range []any{nil, "macros", 42.0, map[string]any{"macro": []any{}}, []byte("ab")} {
		report, err := s.Import(context.Background(), v)
		require.NoError(t, err)
		require.False(t, report.Written)
	}
	require.Empty(t, dev.Requests())
}

func TestImportDropsUnknownRecords(t *testing.T) {
	dev := emulator.New(1, 200, 0)
	s := loaded(t, dev)

	report, err := s.Import(context.Background(), parseLayout(t, `[[
		["text", "a"],
		["shrug", 1, 2],
		"not a record",
		[],
		["delay"],
		["text", "b"]
	]]`))
	require.NoError(t, err)
	require.Equal(t, 4, report.DroppedRecords)
	require.Equal(t, []byte("ab\x00"), s.State().Buffer)
}

func TestImportDropsDelayOnVersion1(t *testing.T) {
	dev := emulator.New(1, 200, 0)
	s := loaded(t, dev, WithVersion(action.V1))

	report, err := s.Import(context.Background(), parseLayout(t, `[[["delay", 10], ["tap", "KC_A"]]]`))
	require.NoError(t, err)
	require.Equal(t, 1, report.DroppedRecords)
	require.Equal(t, []byte{action.TapCode, 0x04, 0x00}, s.State().Buffer)
}

func TestImportTruncatesToMemory(t *testing.T) {
	dev := emulator.New(2, 10, 0)
	s := loaded(t, dev)

	report, err := s.Import(context.Background(), parseLayout(t, `[[["text","abcdefgh"]],[["text","ijkl"]]]`))
	require.NoError(t, err)
	require.Equal(t, 4, report.Truncated)
	require.Equal(t, []byte("abcdefgh\x00i"), s.State().Buffer)
}

func TestImportUnchangedSendsNothing(t *testing.T) {
	dev := emulator.NewWithImage(2, append([]byte("a\x00b\x00"), make([]byte, 50)...))
	var calls []string
	s := loaded(t, dev, WithUnlocker(recordingUnlocker{calls: &calls}))

	report, err := s.Import(context.Background(), parseLayout(t, `[[["text","a"]],[["text","b"]]]`))
	require.NoError(t, err)
	require.False(t, report.Written)
	require.Empty(t, calls)
	require.Empty(t, dev.Requests())
}

func TestImportUnlockWriteLockOrder(t *testing.T) {
	dev := emulator.New(1, 100, 0)
	var calls []string
	sender := orderSender{inner: protocol.NewTransport(dev, protocol.WithBackoff(0)), calls: &calls}
	s := New(sender, WithUnlocker(recordingUnlocker{calls: &calls}))
	require.NoError(t, s.Reload(context.Background()))
	calls = calls[:0]

	_, err := s.Import(context.Background(), parseLayout(t, `[[["text","hello"]]]`))
	require.NoError(t, err)
	require.Equal(t, []string{"unlock", "macro_set_buffer", "lock"}, calls)
}

func TestImportUnlockFailure(t *testing.T) {
	dev := emulator.New(1, 100, 0)
	var calls []string
	s := loaded(t, dev, WithUnlocker(recordingUnlocker{calls: &calls, fail: errors.New("user cancelled")}))

	_, err := s.Import(context.Background(), parseLayout(t, `[[["text","hello"]]]`))
	require.Error(t, err)
	require.Empty(t, dev.Requests())
	require.Equal(t, []string{"unlock"}, calls)
}

func TestImportTypedLayout(t *testing.T) {
	dev := emulator.New(2, 100, 0)
	s := loaded(t, dev)

	layout := [][]action.Record{{{"tap", "KC_ENTER"}}}
	_, err := s.Import(context.Background(), layout)
	require.NoError(t, err)
	require.Equal(t, []byte{action.QMKPrefix, action.TapCode, 0x28, 0x00, 0x00}, s.State().Buffer)
}
