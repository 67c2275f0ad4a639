package options

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
)

// DefaultVersion is the macro protocol assumed when none is given.
const DefaultVersion = action.V2

// ParseHex decodes a hex buffer. Whitespace, '|', '_' and a leading "0x" are
// ignored so dumps can be pasted as-is.
func ParseHex(input string) ([]byte, error) {
	clean := strings.ToUpper(stripWhitespace(input))
	clean = strings.TrimPrefix(clean, "0X")
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex buffer must contain an even number of digits, got %d", len(clean))
	}
	dst := make([]byte, len(clean)/2)
	if _, err := hex.Decode(dst, []byte(clean)); err != nil {
		return nil, fmt.Errorf("invalid buffer hex: %w", err)
	}
	return dst, nil
}

// NormalizeHex returns input without separators, upper-cased.
func NormalizeHex(input string) string {
	return strings.TrimPrefix(strings.ToUpper(stripWhitespace(input)), "0X")
}

// ParseVersion validates a macro protocol version string such as "2" or
// "v1". An empty string selects DefaultVersion.
func ParseVersion(input string) (action.Version, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(input)), "v")
	if s == "" {
		return DefaultVersion, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid protocol version %q: %w", input, err)
	}
	if n < int(action.V1) {
		return 0, fmt.Errorf("protocol version must be >= %d, got %d", action.V1, n)
	}
	return action.Version(n), nil
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
