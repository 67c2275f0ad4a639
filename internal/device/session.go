// Package device keeps the host copy of a keyboard's macro buffer in sync
// with the device.
//
// A Session owns the state of one connection. All device requests it issues
// are sequential; callers sharing a Session must serialize access. After a
// reconnect or a transport failure the session must be reloaded.
package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
	"github.com/ObiWanKeoni/vial-gui/internal/macro"
	"github.com/ObiWanKeoni/vial-gui/internal/metrics"
	"github.com/ObiWanKeoni/vial-gui/internal/protocol"
)

var (
	ErrSizeExceeded = errors.New("macro buffer exceeds device memory")
	ErrNotLoaded    = errors.New("macro state not loaded (reload required)")
)

// BufferState is the cached device macro state.
type BufferState struct {
	Count  byte
	Memory uint16
	Buffer []byte
	Loaded bool
}

// Session mirrors one device's macro buffer.
type Session struct {
	sender   protocol.Sender
	version  action.Version
	keys     keycode.Resolver
	unlocker Unlocker
	retries  int
	log      logrus.FieldLogger
	recorder metrics.Recorder

	state BufferState
}

// Option configures a Session.
type Option func(*Session)

// WithVersion selects the macro wire format.
func WithVersion(v action.Version) Option {
	return func(s *Session) { s.version = v }
}

// WithResolver sets the keycode table used when decoding and importing.
func WithResolver(r keycode.Resolver) Option {
	return func(s *Session) { s.keys = r }
}

// WithUnlocker sets the handshake run around imports.
func WithUnlocker(u Unlocker) Option {
	return func(s *Session) { s.unlocker = u }
}

// WithRetries sets the attempt budget of every round trip.
func WithRetries(n int) Option {
	return func(s *Session) { s.retries = n }
}

// WithLogger sets the session logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithRecorder sets where buffer transfer sizes are reported.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// New creates a session. Reload must be called before any other operation.
func New(sender protocol.Sender, opts ...Option) *Session {
	s := &Session{
		sender:   sender,
		version:  action.V2,
		keys:     keycode.Basic(),
		unlocker: NoopUnlocker{},
		retries:  protocol.DefaultRetries,
		recorder: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.recorder == nil {
		s.recorder = metrics.Noop{}
	}
	return s
}

// State returns a copy of the cached state.
func (s *Session) State() BufferState {
	st := s.state
	st.Buffer = append([]byte(nil), s.state.Buffer...)
	return st
}

// Version returns the macro wire format in use.
func (s *Session) Version() action.Version {
	return s.version
}

// Codec returns the macro set codec matching the loaded device.
func (s *Session) Codec() macro.SetCodec {
	return macro.SetCodec{Count: int(s.state.Count), Version: s.version, Keys: s.keys}
}

// Invalidate drops the cached state, as required after a reconnect.
func (s *Session) Invalidate() {
	s.state = BufferState{}
}

// Reload reads the macro count, the buffer size and the buffer. The buffer
// is fetched in protocol.ChunkSize pieces and fetching stops once more NUL
// bytes than macros arrived.
func (s *Session) Reload(ctx context.Context) error {
	s.Invalidate()

	resp, err := s.send(ctx, protocol.GetCount())
	if err != nil {
		return err
	}
	count, err := protocol.ParseCount(resp)
	if err != nil {
		return err
	}
	resp, err = s.send(ctx, protocol.GetBufferSize())
	if err != nil {
		return err
	}
	memory, err := protocol.ParseBufferSize(resp)
	if err != nil {
		return err
	}

	var buf []byte
	nuls := 0
	chunks := 0
	for off := 0; off < int(memory); off += protocol.ChunkSize {
		size := min(protocol.ChunkSize, int(memory)-off)
		resp, err := s.send(ctx, protocol.GetBuffer(uint16(off), byte(size)))
		if err != nil {
			return err
		}
		chunk, err := protocol.ParseBuffer(resp, size)
		if err != nil {
			return err
		}
		chunks++
		s.recorder.RecordBytes("in", len(chunk))
		buf = append(buf, chunk...)
		nuls += bytes.Count(chunk, []byte{0})
		if nuls > int(count) {
			break
		}
	}

	codec := macro.SetCodec{Count: int(count), Version: s.version, Keys: s.keys}
	if memory > 0 {
		buf = codec.Normalize(buf)
	}
	s.state = BufferState{
		Count:  count,
		Memory: memory,
		Buffer: buf,
		Loaded: true,
	}
	s.log.WithFields(logrus.Fields{
		"macro_count":  count,
		"macro_memory": memory,
		"chunks":       chunks,
		"buffer_bytes": len(buf),
	}).Debug("macro buffer reloaded")
	return nil
}

// Write stores data at the start of the device buffer and makes it the
// cached buffer. Nothing is sent when data exceeds the device memory.
func (s *Session) Write(ctx context.Context, data []byte) error {
	if !s.state.Loaded {
		return ErrNotLoaded
	}
	if len(data) > int(s.state.Memory) {
		return fmt.Errorf("%w: got %d bytes, max %d", ErrSizeExceeded, len(data), s.state.Memory)
	}
	for off := 0; off < len(data); off += protocol.ChunkSize {
		end := min(off+protocol.ChunkSize, len(data))
		msg, err := protocol.SetBuffer(uint16(off), data[off:end])
		if err != nil {
			return err
		}
		if _, err := s.send(ctx, msg); err != nil {
			return err
		}
		s.recorder.RecordBytes("out", end-off)
	}
	s.state.Buffer = append([]byte(nil), data...)
	s.log.WithField("buffer_bytes", len(data)).Debug("macro buffer written")
	return nil
}

// Macros decodes the cached buffer.
func (s *Session) Macros() ([]macro.Macro, error) {
	if !s.state.Loaded {
		return nil, ErrNotLoaded
	}
	return s.Codec().Decode(s.state.Buffer), nil
}

// send runs one round trip. A transport failure leaves the device in an
// unknown state, so the cache is dropped.
func (s *Session) send(ctx context.Context, msg []byte) ([]byte, error) {
	resp, err := s.sender.Send(ctx, msg, s.retries)
	if err != nil {
		s.Invalidate()
		if !errors.Is(err, protocol.ErrTransport) {
			err = fmt.Errorf("%w: %w", protocol.ErrTransport, err)
		}
		return nil, err
	}
	return resp, nil
}
