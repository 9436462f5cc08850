// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/pkg/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeafSettings(t *testing.T) {
	settings, err := ParseLeafSettings("a=13;b=1_000; c=-0.5;")
	require.NoError(t, err)
	assert.Equal(t, []LeafSetting{{"a", 13}, {"b", 1000}, {"c", -0.5}}, settings)

	path := filepath.Join(t.TempDir(), "settings.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Comment\nd=1;e=2\n\nf=3\n"), 0o644))
	settings, err = ParseLeafSettings("a=0;file:" + path)
	require.NoError(t, err)
	assert.Equal(t, []LeafSetting{{"a", 0}, {"d", 1}, {"e", 2}, {"f", 3}}, settings)

	for _, bad := range []string{"a", "=1", "a=b", "file:" + filepath.Join(t.TempDir(), "missing")} {
		_, err = ParseLeafSettings(bad)
		assert.Errorf(t, err, "settings %q", bad)
	}
}

func TestApplyLeafSettings(t *testing.T) {
	unit := builder.New("x", 0).NamedBinaryOp("slope", 2, ops.Mul).NamedBinaryOp("bias", 1, ops.Add)
	require.NoError(t, ApplyLeafSettings(unit, []LeafSetting{{"slope", 3}, {"bias", -1}}))
	assert.Equal(t, 3.0*2-1, unit.Forward(2))

	err := ApplyLeafSettings(unit, []LeafSetting{{"x", 1}})
	require.ErrorContains(t, err, "input")
	err = ApplyLeafSettings(unit, []LeafSetting{{"nope", 1}})
	require.ErrorContains(t, err, "slope")
}

func TestResolveLeafSettings(t *testing.T) {
	build := func() *builder.Unit { return builder.New("x", 0).Mul(2).Add(1) }
	first := build()
	values, err := ResolveLeafSettings(first, []LeafSetting{{first.Leaves()[1].Name(), 3}})
	require.NoError(t, err)
	require.NoError(t, values.Apply(first))
	assert.Equal(t, 7.0, first.Forward(2))

	// A rebuild has new constant names, but its leaves are in the same order.
	second := build()
	require.Nil(t, second.Leaf(first.Leaves()[1].Name()))
	require.NoError(t, values.Apply(second))
	assert.Equal(t, 7.0, second.Forward(2))

	err = values.Apply(builder.New("x", 0))
	require.ErrorContains(t, err, "can't be set")
	_, err = ResolveLeafSettings(first, []LeafSetting{{"x", 1}})
	require.ErrorContains(t, err, "input")
}

func TestReports(t *testing.T) {
	SetPlain()
	unit := builder.New("x", 0).NamedBinaryOp("slope", 2, ops.Mul).Log()
	var sb strings.Builder
	ReportSummary(&sb, "test", unit, 0.5)
	summary := sb.String()
	assert.Contains(t, summary, "Summary: test")
	assert.Contains(t, summary, "f'(x)")
	assert.Contains(t, summary, "# variables")

	sb.Reset()
	ReportGradients(&sb, unit, 0.5)
	assert.Contains(t, sb.String(), "slope")
	assert.Contains(t, sb.String(), FormatFloat(1/0.5))

	sb.Reset()
	require.NoError(t, ReportGraph(&sb, unit))
	assert.Equal(t, 4, strings.Count(sb.String(), "-->"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.00ms", FormatDuration(2*time.Millisecond))
	assert.Equal(t, "1m30s", FormatDuration(90*time.Second))
}
