package plot

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/dcsolve/pkg/scalar"
)

func sweepResults() map[string][]scalar.Float {
	return map[string][]scalar.Float{
		"SWEEP1": {0, 1, 2, 3},
		"V(1)":   {0, 1, 2, 3},
		"V(2)":   {0, 0.5, 1, 1.5},
		"I(R1)":  {0, 1e-3, 2e-3, 3e-3},
	}
}

func TestDCSweep(t *testing.T) {
	p, err := DCSweep(sweepResults(), WithTitle("divider"))
	require.NoError(t, err)
	assert.Equal(t, "divider", p.Title.Text)
	assert.Equal(t, "SWEEP1", p.X.Label.Text)
	assert.InDelta(t, 0, p.X.Min, 1e-12)
	assert.InDelta(t, 3, p.X.Max, 1e-12)
	assert.InDelta(t, 3, p.Y.Max, 1e-12)
}

func TestDCSweep_Nested(t *testing.T) {
	res := map[string][]scalar.Float{
		"SWEEP1": {0, 0, 1, 1},
		"SWEEP2": {0, 1, 0, 1},
		"V(1)":   {0, 1, 1, 2},
	}
	p, err := DCSweep(res)
	require.NoError(t, err)
	assert.InDelta(t, 1, p.X.Max, 1e-12)
	assert.InDelta(t, 2, p.Y.Max, 1e-12)
}

func TestDCSweep_NoSweep(t *testing.T) {
	_, err := DCSweep(map[string][]scalar.Float{"V(1)": {5}})
	assert.ErrorIs(t, err, ErrNoSweep)

	_, err = DCSweep(map[string][]scalar.Float{"SWEEP1": {0, 1}, "I(R1)": {0, 1}})
	assert.ErrorIs(t, err, ErrNoSweep, "currents are drawn only on request")
}

func TestRender(t *testing.T) {
	var img bytes.Buffer
	require.NoError(t, Render(&img, sweepResults(), "png", WithCurrents()))
	assert.True(t, bytes.HasPrefix(img.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	var svg bytes.Buffer
	require.NoError(t, Render(&svg, sweepResults(), "svg"))
	assert.Contains(t, svg.String(), "<svg")

	assert.Error(t, Render(&svg, sweepResults(), "bmp"))
}

func TestRender_Size(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sweepResults(), "png", WithSize(2*vg.Inch, 1*vg.Inch)))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	// 96 dpi
	assert.Equal(t, 192, cfg.Width)
	assert.Equal(t, 96, cfg.Height)

	buf.Reset()
	require.NoError(t, Render(&buf, sweepResults(), "png"))
	cfg, err = png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 576, cfg.Width)
	assert.Equal(t, 384, cfg.Height)

	assert.ErrorIs(t, Render(&buf, sweepResults(), "png", WithSize(0, vg.Inch)), ErrBadSize)
}

func TestRender_Decimal(t *testing.T) {
	half, err := scalar.Parse[scalar.Decimal]("0.5")
	require.NoError(t, err)
	res := map[string][]scalar.Decimal{
		"SWEEP1": {scalar.Zero[scalar.Decimal](), half},
		"V(1)":   {scalar.Zero[scalar.Decimal](), half},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res, "png"))
	assert.NotZero(t, buf.Len())
}
