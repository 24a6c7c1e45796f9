package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColorPadsMissingDigits(t *testing.T) {
	c, err := ParseColor("ff0000")
	require.NoError(t, err)
	require.Equal(t, Color{R: 0xff, G: 0x00, B: 0x00, A: 0xff}, c)
}

func TestParseColorFull(t *testing.T) {
	c, err := ParseColor("11223344")
	require.NoError(t, err)
	require.Equal(t, Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, c)
}

func TestParseColorEmptyIsError(t *testing.T) {
	_, err := ParseColor("")
	require.Error(t, err)
}

func TestParseColorTooLongIsError(t *testing.T) {
	_, err := ParseColor("112233445566")
	require.Error(t, err)
}

func TestParseColorInvalidHex(t *testing.T) {
	_, err := ParseColor("zzzzzz")
	require.Error(t, err)
}

func TestColorStringRoundTrip(t *testing.T) {
	c, err := ParseColor("a1b2c3d4")
	require.NoError(t, err)
	require.Equal(t, "%a1b2c3d4", c.String())

	back, err := ParseColor(c.String()[1:])
	require.NoError(t, err)
	require.Equal(t, c, back)
}
