package action

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

// TagDelay identifies Delay records.
const TagDelay = "delay"

// Delay pauses playback. Only protocol version 2 and later can encode it.
type Delay struct {
	Milliseconds uint16
}

func (*Delay) action() {}

// Tag implements Action.
func (*Delay) Tag() string { return TagDelay }

// Serialize implements Action. Both delay bytes are stored off by one so the
// encoding never produces 0x00.
func (d *Delay) Serialize(v Version) ([]byte, error) {
	if err := checkVersion(v); err != nil {
		return nil, err
	}
	if v < V2 {
		return nil, fmt.Errorf("%w: delay requires protocol 2, got %d", ErrUnsupportedVersion, v)
	}
	ms := int(d.Milliseconds)
	if ms > MaxDelay {
		ms = MaxDelay
	}
	return []byte{QMKPrefix, DelayCode, byte(ms%255 + 1), byte(ms/255 + 1)}, nil
}

// DecodeDelay reverses the two stuffed delay bytes. A zero byte, which a
// well-formed buffer never holds, counts as zero.
func DecodeDelay(lo, hi byte) uint16 {
	ms := max(int(lo)-1, 0) + max(int(hi)-1, 0)*255
	return uint16(ms)
}

// Save implements Action.
func (d *Delay) Save() Record {
	return Record{TagDelay, int(d.Milliseconds)}
}

// Restore implements Action. Out of range values are clamped.
func (d *Delay) Restore(rec Record, _ keycode.Resolver) error {
	if len(rec) != 2 {
		return fmt.Errorf("%w: delay expects 1 value, got %d", ErrMalformedRecord, len(rec)-1)
	}
	var ms int
	if err := mapstructure.WeakDecode(rec[1], &ms); err != nil {
		return fmt.Errorf("%w: delay: %v", ErrMalformedRecord, err)
	}
	switch {
	case ms < 0:
		ms = 0
	case ms > MaxDelay:
		ms = MaxDelay
	}
	d.Milliseconds = uint16(ms)
	return nil
}
