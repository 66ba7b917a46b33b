package entity

import (
	"image/color"
	"strconv"
	"strings"
)

// maskColors цвета наложения масок для тем интерфейса.
var maskColors = map[string]string{
	"dark":     "#ff00ff",
	"light":    "#a21caf",
	"midnight": "#a78bfa",
	"crimson":  "#ff7a2a",
	"mint":     "#2dd4bf",
	"forest":   "#4fa86f",
	"aurora":   "#a78bfa",
	"voron":    "#ff2d2d",
}

// FallbackMaskColor цвет для некорректных значений.
var FallbackMaskColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// ParseHexColor разбирает цвет вида #rrggbb.
func ParseHexColor(s string) (color.RGBA, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return FallbackMaskColor, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return FallbackMaskColor, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// MaskColor выбирает цвет наложения: custom_theme.mask, затем тема, затем тёмная тема.
func MaskColor(theme string, custom map[string]any) color.RGBA {
	if m, ok := custom["mask"].(string); ok && m != "" {
		c, _ := ParseHexColor(m)
		return c
	}
	hex, ok := maskColors[theme]
	if !ok {
		hex = maskColors["dark"]
	}
	c, _ := ParseHexColor(hex)
	return c
}
