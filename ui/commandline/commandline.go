// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline holds the command-line user interface utilities: tables of values and gradients,
// a progress bar for sweeps and the parsing of leaf settings.
package commandline

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/pkg/core/graph"
	"github.com/muesli/termenv"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)

// SetPlain disables colors and styles of the reports.
func SetPlain() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// FormatFloat formats values for the reports.
func FormatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', 8, 64)
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ReportSummary writes the size of the unit's graph and its value and derivative at x.
func ReportSummary(w io.Writer, name string, unit *builder.Unit, x float64) {
	value := unit.Forward(x)
	derivative := unit.Backward(x)
	g := unit.Graph()
	_, _ = fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Summary: %s", name)))
	table := newPlainTable(false, lipgloss.Right, lipgloss.Left)
	table.Row(false, "# variables", humanize.Comma(int64(g.Len())))
	table.Row(false, "# edges", humanize.Comma(int64(g.NumEdges())))
	table.Row(false, "# leaves", humanize.Comma(int64(len(unit.Leaves()))))
	table.Row(false, unit.Input().Name(), FormatFloat(x))
	table.Row(!isFinite(value), "f(x)", FormatFloat(value))
	table.Row(!isFinite(derivative), "f'(x)", FormatFloat(derivative))
	_, _ = fmt.Fprintln(w, table.Table.Render())
}

// ReportGradients writes the gradient of the unit's output with respect to each of its leaves, at x.
// Non-finite gradients are highlighted.
func ReportGradients(w io.Writer, unit *builder.Unit, x float64) {
	grads := unit.Gradients(x)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Gradients"))
	table := newPlainTable(true, lipgloss.Left, lipgloss.Right)
	table.Table.Headers("Leaf", "Value", "Gradient")
	for _, leaf := range unit.Leaves() {
		grad := grads.Of(leaf)
		gradStr := "-"
		isRed := false
		if len(grad) == 1 {
			gradStr = FormatFloat(grad[0])
			isRed = !isFinite(grad[0])
		}
		table.Row(isRed, leaf.Name(), FormatFloat(leaf.Value()), gradStr)
	}
	_, _ = fmt.Fprintln(w, table.Table.Render())
}

// ReportGraph writes the unit's graph, one line per variable.
func ReportGraph(w io.Writer, unit *builder.Unit) error {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Graph"))
	return unit.Graph().Print(w)
}

// leafNames is used to list the valid names in error messages.
func leafNames(leaves []*graph.Variable) []string {
	names := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		if leaf.Name() != "" {
			names = append(names, leaf.Name())
		}
	}
	return names
}
