package entity

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskColor(t *testing.T) {
	require.Equal(t, color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}, MaskColor("dark", nil))
	require.Equal(t, color.RGBA{R: 0x2d, G: 0xd4, B: 0xbf, A: 0xff}, MaskColor("mint", nil))
	require.Equal(t, MaskColor("dark", nil), MaskColor("unknown", nil))
	require.Equal(t, color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}, MaskColor("mint", map[string]any{"mask": "#123456"}))
}

func TestParseHexColor_Invalid(t *testing.T) {
	c, ok := ParseHexColor("#12")
	require.False(t, ok)
	require.Equal(t, FallbackMaskColor, c)

	_, ok = ParseHexColor("zzzzzz")
	require.False(t, ok)
}
