package entity

import (
	"bytes"
	"encoding/json"
	"image"
	"math"
	"strconv"
)

// MaskZone прямоугольная зона исключения в долях ширины и высоты кадра.
// Значения не ограничены диапазоном 0..1 и обрезаются при использовании.
type MaskZone struct {
	X float64
	Y float64
	W float64
	H float64

	// raw хранит исходный JSON зоны с нечисловыми полями, чтобы сохранить его без потерь.
	raw json.RawMessage
}

// Valid сообщает, удалось ли разобрать все поля зоны как числа.
func (z MaskZone) Valid() bool {
	if z.raw != nil {
		return false
	}
	for _, v := range []float64{z.X, z.Y, z.W, z.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Rect переводит зону в пиксельный прямоугольник кадра w×h.
// Прямоугольник всегда лежит внутри кадра и имеет положительную площадь.
func (z MaskZone) Rect(w, h int) (image.Rectangle, bool) {
	if !z.Valid() || w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}

	mx := clampInt(roundInt(z.X*float64(w)), 0, w-1)
	my := clampInt(roundInt(z.Y*float64(h)), 0, h-1)
	mw := clampInt(roundInt(z.W*float64(w)), 1, w-mx)
	mh := clampInt(roundInt(z.H*float64(h)), 1, h-my)

	return image.Rect(mx, my, mx+mw, my+mh), true
}

// UnmarshalJSON принимает числа и числовые строки; остальное помечает зону как некорректную.
func (z *MaskZone) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*z = MaskZone{raw: append(json.RawMessage(nil), data...)}
		return nil
	}

	var zone MaskZone
	ok := true
	for key, dst := range map[string]*float64{"x": &zone.X, "y": &zone.Y, "w": &zone.W, "h": &zone.H} {
		v, parsed := parseZoneField(fields[key])
		if !parsed {
			ok = false
			break
		}
		*dst = v
	}
	if !ok {
		zone = MaskZone{raw: append(json.RawMessage(nil), data...)}
	}
	*z = zone
	return nil
}

// MarshalJSON сохраняет некорректные зоны в исходном виде.
func (z MaskZone) MarshalJSON() ([]byte, error) {
	if z.raw != nil {
		return z.raw, nil
	}
	return json.Marshal(struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		W float64 `json:"w"`
		H float64 `json:"h"`
	}{z.X, z.Y, z.W, z.H})
}

func parseZoneField(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

func roundInt(v float64) int {
	r := math.Round(v)
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	if r < math.MinInt32 {
		return math.MinInt32
	}
	return int(r)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
