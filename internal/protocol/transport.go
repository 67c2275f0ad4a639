package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ObiWanKeoni/vial-gui/internal/metrics"
)

// Sender performs one request/response round trip with up to retries
// attempts.
type Sender interface {
	Send(ctx context.Context, msg []byte, retries int) ([]byte, error)
}

// Conn is a report-oriented device handle such as an opened raw HID
// interface.
type Conn interface {
	Write(report []byte) (int, error)
	Read(report []byte) (int, error)
}

// DefaultBackoff is the pause between attempts.
const DefaultBackoff = 500 * time.Millisecond

// Transport implements Sender over a Conn.
type Transport struct {
	conn     Conn
	backoff  time.Duration
	recorder metrics.Recorder
	log      logrus.FieldLogger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBackoff sets the pause between attempts.
func WithBackoff(d time.Duration) TransportOption {
	return func(t *Transport) { t.backoff = d }
}

// WithRecorder reports round trips to r.
func WithRecorder(r metrics.Recorder) TransportOption {
	return func(t *Transport) { t.recorder = r }
}

// WithTransportLogger sets the logger used for retry diagnostics.
func WithTransportLogger(l logrus.FieldLogger) TransportOption {
	return func(t *Transport) { t.log = l }
}

// NewTransport wraps conn.
func NewTransport(conn Conn, opts ...TransportOption) *Transport {
	t := &Transport{
		conn:     conn,
		backoff:  DefaultBackoff,
		recorder: metrics.Noop{},
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send pads msg to ReportLen, writes it and reads one response report.
// Failed attempts are retried after the backoff until retries attempts were
// made; the returned error then wraps ErrTransport.
func (t *Transport) Send(ctx context.Context, msg []byte, retries int) ([]byte, error) {
	if len(msg) > ReportLen {
		return nil, fmt.Errorf("request of %d bytes exceeds report length %d", len(msg), ReportLen)
	}
	if retries < 1 {
		retries = 1
	}
	report := make([]byte, ReportLen)
	copy(report, msg)
	name := "empty"
	if len(msg) > 0 {
		name = CommandName(msg[0])
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, t.backoff); err != nil {
				t.recorder.RecordFailure(name)
				return nil, fmt.Errorf("%w: %s: %v", ErrTransport, name, err)
			}
		}
		resp, err := t.roundTrip(report)
		if err == nil {
			t.recorder.RecordRoundTrip(name, attempt, time.Since(start))
			return resp, nil
		}
		lastErr = err
		t.log.WithFields(logrus.Fields{
			"command": name,
			"attempt": attempt,
		}).WithError(err).Debug("device round trip failed")
	}
	t.recorder.RecordFailure(name)
	return nil, fmt.Errorf("%w: %s failed after %d attempts: %v", ErrTransport, name, retries, lastErr)
}

func (t *Transport) roundTrip(report []byte) ([]byte, error) {
	n, err := t.conn.Write(report)
	if err != nil {
		return nil, err
	}
	if n != len(report) {
		return nil, fmt.Errorf("short write: %d of %d bytes", n, len(report))
	}
	resp := make([]byte, ReportLen)
	n, err = t.conn.Read(resp)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("empty response")
	}
	return resp[:n], nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
