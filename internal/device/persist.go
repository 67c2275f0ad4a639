package device

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/macro"
)

// ImportReport describes what an Import changed and what it had to drop.
type ImportReport struct {
	// Written is true when the device buffer was rewritten.
	Written bool
	// Truncated holds how many encoded bytes did not fit in device memory.
	Truncated int
	// DroppedMacros counts imported macros past the device macro count.
	DroppedMacros int
	// DroppedRecords counts records with unknown tags or invalid content.
	DroppedRecords int
}

// Export returns the cached macros in portable form.
func (s *Session) Export() ([][]action.Record, error) {
	macros, err := s.Macros()
	if err != nil {
		return nil, err
	}
	return macro.Portable(macros), nil
}

// Import replaces the device macros with a portable layout. A top-level
// value that is not a list is ignored. Unknown records are dropped, the macro
// list is padded or cut to the device macro count and the encoding is cut to
// the device memory. The device is only written when the result differs from
// the cached buffer.
func (s *Session) Import(ctx context.Context, data any) (ImportReport, error) {
	var report ImportReport
	if !s.state.Loaded {
		return report, ErrNotLoaded
	}
	imported, dropped, ok := macro.FromPortable(data, s.version, s.keys)
	if !ok {
		s.log.WithField("type", fmt.Sprintf("%T", data)).Debug("macro import ignored: not a list")
		return report, nil
	}
	report.DroppedRecords = len(dropped)
	for _, d := range dropped {
		s.log.WithFields(logrus.Fields{"macro": d.Macro, "record": d.Record}).WithError(d.Err).Debug("macro record dropped")
	}

	codec := s.Codec()
	if len(imported) > codec.Count {
		report.DroppedMacros = len(imported) - codec.Count
	}
	encoded, err := codec.Encode(codec.Pad(imported))
	if err != nil {
		return report, err
	}
	if len(encoded) > int(s.state.Memory) {
		report.Truncated = len(encoded) - int(s.state.Memory)
		encoded = encoded[:s.state.Memory]
	}
	if report.DroppedMacros > 0 || report.Truncated > 0 {
		s.log.WithFields(logrus.Fields{
			"dropped_macros": report.DroppedMacros,
			"truncated":      report.Truncated,
			"macro_count":    codec.Count,
			"macro_memory":   s.state.Memory,
		}).Warn("imported macros do not fit the device")
	}

	if bytes.Equal(encoded, s.state.Buffer) {
		return report, nil
	}
	if err := s.unlocker.Unlock(ctx); err != nil {
		return report, fmt.Errorf("unlock device: %w", err)
	}
	if err := s.Write(ctx, encoded); err != nil {
		return report, err
	}
	if err := s.unlocker.Lock(ctx); err != nil {
		return report, fmt.Errorf("lock device: %w", err)
	}
	report.Written = true
	return report, nil
}
