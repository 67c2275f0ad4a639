package vialmacro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
	"github.com/ObiWanKeoni/vial-gui/internal/macro"
	internalopts "github.com/ObiWanKeoni/vial-gui/internal/options"
)

// Result captures the outcome of DecodeHex.
type Result struct {
	Protocol  int
	Count     int
	ByteCount int
	RawHex    string
	Macros    [][]action.Record
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	summary := map[string]any{
		"protocol":   r.Protocol,
		"count":      r.Count,
		"byte_count": r.ByteCount,
		"raw_hex":    r.RawHex,
		"macro":      r.Macros,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("protocol: %d bytes:%d raw:%s (marshal error: %v)", r.Protocol, r.ByteCount, r.RawHex, err)
	}
	return string(data)
}

// DecodeHex decodes a hex dump of a macro buffer.
func DecodeHex(ctx context.Context, raw string) (Result, error) {
	return DecodeHexWithOptions(ctx, raw, Options{})
}

// DecodeHexWithOptions decodes a hex dump with custom options. When
// opts.Count is zero, one macro is decoded per NUL-terminated record.
func DecodeHexWithOptions(ctx context.Context, raw string, opts Options) (Result, error) {
	cfg, err := opts.toInternal()
	if err != nil {
		return Result{}, err
	}
	data, err := internalopts.ParseHex(raw)
	if err != nil {
		return Result{}, err
	}
	count := cfg.count
	if count == 0 {
		count = max(bytes.Count(data, []byte{0}), 1)
	}
	codec := macro.SetCodec{Count: count, Version: cfg.version, Keys: keycode.Basic()}
	return Result{
		Protocol:  int(cfg.version),
		Count:     count,
		ByteCount: len(data),
		RawHex:    internalopts.NormalizeHex(raw),
		Macros:    macro.Portable(codec.Decode(data)),
	}, nil
}

// EncodeLayout encodes a decoded portable layout into a macro buffer. When
// opts.Count is zero, the layout length is used. Records that cannot be
// restored are skipped.
func EncodeLayout(ctx context.Context, layout any, opts Options) ([]byte, error) {
	cfg, err := opts.toInternal()
	if err != nil {
		return nil, err
	}
	macros, _, ok := macro.FromPortable(layout, cfg.version, keycode.Basic())
	if !ok {
		return nil, fmt.Errorf("layout is %T, expected a list of macros", layout)
	}
	codec := macro.SetCodec{Count: cfg.count, Version: cfg.version}
	if codec.Count == 0 {
		codec.Count = len(macros)
	}
	return codec.Encode(codec.Pad(macros))
}
