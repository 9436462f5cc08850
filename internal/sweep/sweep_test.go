// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sweep

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/gomlx/scalargrad/internal/exprfile"
	"github.com/gomlx/scalargrad/internal/workerspool"
	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/ui/commandline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	r, err := ParseRange("-1:1:5")
	require.NoError(t, err)
	assert.Equal(t, Range{From: -1, To: 1, Steps: 5}, r)
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, r.Points())

	for _, text := range []string{"", "1:2", "a:2:3", "1:b:3", "1:2:c", "1:2:0", "1:2:3:4"} {
		_, err := ParseRange(text)
		assert.Errorf(t, err, "range %q", text)
	}
}

func TestRun(t *testing.T) {
	expr, err := exprfile.Example("singular")
	require.NoError(t, err)
	xs := Range{From: 0.1, To: 4, Steps: 40}.Points()
	var count atomic.Int32
	samples, err := Run(workerspool.New().SetMaxParallelism(4), expr.Build, xs, func() { count.Add(1) })
	require.NoError(t, err)
	require.Len(t, samples, len(xs))
	assert.Equal(t, int32(len(xs)), count.Load())

	reference, err := expr.Build()
	require.NoError(t, err)
	for ii, s := range samples {
		assert.Equal(t, xs[ii], s.X)
		assert.True(t, s.IsFinite())
		assert.InDelta(t, reference.Forward(s.X), s.Value, 1e-12)
		assert.InDelta(t, reference.Backward(s.X), s.Derivative, 1e-12)
	}
}

func TestRunWithLeafSettings(t *testing.T) {
	expr, err := exprfile.Example("singular")
	require.NoError(t, err)
	reference, err := expr.Build()
	require.NoError(t, err)
	name := reference.Leaves()[1].Name()
	settings, err := commandline.ParseLeafSettings(name + "=3")
	require.NoError(t, err)
	values, err := commandline.ResolveLeafSettings(reference, settings)
	require.NoError(t, err)
	require.NoError(t, values.Apply(reference))

	build := func() (*builder.Unit, error) {
		unit, err := expr.Build()
		if err != nil {
			return nil, err
		}
		return unit, values.Apply(unit)
	}
	xs := []float64{0.5, 1, 1.5, 2}
	samples, err := Run(workerspool.New().SetMaxParallelism(2), build, xs, nil)
	require.NoError(t, err)
	for ii, s := range samples {
		// exp(|log(3x+3) - 5|^0.5) / 2
		want := math.Exp(math.Sqrt(math.Abs(math.Log(3*xs[ii]+3)-5))) / 2
		assert.InDelta(t, want, s.Value, 1e-9)
		assert.InDelta(t, reference.Forward(xs[ii]), s.Value, 1e-12)
		assert.InDelta(t, reference.Backward(xs[ii]), s.Derivative, 1e-12)
	}
}

func TestRunNonFinite(t *testing.T) {
	build := func() (*builder.Unit, error) { return builder.New("x", 0).Log(), nil }
	samples, err := Run(workerspool.New().SetMaxParallelism(0), build, []float64{-1, 0, 1}, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(samples[0].Value))
	assert.False(t, samples[0].IsFinite())
	assert.True(t, math.IsInf(samples[1].Value, -1))
	assert.False(t, samples[1].IsFinite())
	assert.True(t, samples[2].IsFinite())
}
