package entity

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskZoneRect_ClampsOverflow(t *testing.T) {
	z := MaskZone{X: 0.9, Y: 0.9, W: 0.5, H: 0.5}
	r, ok := z.Rect(640, 480)
	require.True(t, ok)
	require.Equal(t, image.Rect(576, 432, 640, 480), r)
	require.Equal(t, 64, r.Dx())
	require.Equal(t, 48, r.Dy())
}

func TestMaskZoneRect_Degenerate(t *testing.T) {
	z := MaskZone{X: -1, Y: 2, W: 0, H: -3}
	r, ok := z.Rect(100, 50)
	require.True(t, ok)
	require.Equal(t, image.Rect(0, 49, 1, 50), r)
	require.True(t, r.In(image.Rect(0, 0, 100, 50)))
}

func TestMaskZoneRect_EmptyFrame(t *testing.T) {
	_, ok := MaskZone{W: 1, H: 1}.Rect(0, 10)
	require.False(t, ok)
}

func TestMaskZone_UnmarshalLenient(t *testing.T) {
	var zones []MaskZone
	data := `[{"x":"0.25","y":0.1,"w":0.5,"h":"0.2"},{"x":"abc","y":0,"w":0.1,"h":0.1},{"x":0.1}]`
	require.NoError(t, json.Unmarshal([]byte(data), &zones))
	require.Len(t, zones, 3)

	require.True(t, zones[0].Valid())
	require.InDelta(t, 0.25, zones[0].X, 1e-9)
	require.InDelta(t, 0.2, zones[0].H, 1e-9)

	require.False(t, zones[1].Valid())
	_, ok := zones[1].Rect(640, 480)
	require.False(t, ok)

	require.False(t, zones[2].Valid())
}

func TestMaskZone_MarshalKeepsMalformedZone(t *testing.T) {
	raw := `{"x":"abc","y":0,"w":0.1,"h":0.1}`
	var z MaskZone
	require.NoError(t, json.Unmarshal([]byte(raw), &z))

	out, err := json.Marshal(z)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(out))

	out, err = json.Marshal(MaskZone{X: 0.1, Y: 0.2, W: 0.3, H: 0.4})
	require.NoError(t, err)
	require.JSONEq(t, `{"x":0.1,"y":0.2,"w":0.3,"h":0.4}`, string(out))
}
