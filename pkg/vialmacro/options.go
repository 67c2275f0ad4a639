package vialmacro

import (
	"fmt"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
	internalopts "github.com/ObiWanKeoni/vial-gui/internal/options"
)

// Options configures decoding and encoding.
type Options struct {
	// Protocol is the macro protocol version ("1", "2"); empty means 2.
	Protocol string
	// Count is the device macro count; zero derives it from the input.
	Count int
}

type config struct {
	version action.Version
	count   int
}

func (opts Options) toInternal() (config, error) {
	v, err := internalopts.ParseVersion(opts.Protocol)
	if err != nil {
		return config{}, err
	}
	if opts.Count < 0 || opts.Count > 255 {
		return config{}, fmt.Errorf("macro count must be within 0-255, got %d", opts.Count)
	}
	return config{version: v, count: opts.Count}, nil
}
