package value

import (
	"fmt"
)

// Color is an RGBA color literal (%rrggbbaa), grounded on
// original_source/sfmlog.py's _Color.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses a hex string of 1-8 characters (no leading %), padding
// any missing trailing digits with "000000ff" the way from_hex does.
// Per spec.md §9's open question, a 0-length string is an error (the
// original silently accepted it; we implement the stated intent instead).
func ParseColor(hex string) (Color, error) {
	if len(hex) == 0 {
		return Color{}, fmt.Errorf("invalid color: empty hex string")
	}
	if len(hex) > 8 {
		return Color{}, fmt.Errorf("invalid color: hex string %q too long", hex)
	}
	const pad = "000000ff"
	full := hex + pad[len(hex):]

	var bytes [4]uint8
	for i := range bytes {
		var b int
		if _, err := fmt.Sscanf(full[i*2:i*2+2], "%02x", &b); err != nil {
			return Color{}, fmt.Errorf("invalid color: %q is not hex", hex)
		}
		bytes[i] = uint8(b)
	}
	return Color{R: bytes[0], G: bytes[1], B: bytes[2], A: bytes[3]}, nil
}

// String renders the color as "%rrggbbaa".
func (c Color) String() string {
	return fmt.Sprintf("%%%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
