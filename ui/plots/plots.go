// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package plots draws the samples of a sweep: the value and the derivative of a function over a range.
package plots

import (
	"image/color"
	"path/filepath"

	"github.com/gomlx/scalargrad/internal/sweep"
	"github.com/gomlx/scalargrad/pkg/support/fsutil"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"
)

// Width and Height of the saved plots.
var (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// Lines returns the value and derivative lines of the samples.
// Samples with non-finite values are skipped.
func Lines(samples []sweep.Sample) (values, derivatives plotter.XYs) {
	for _, s := range samples {
		if !s.IsFinite() {
			continue
		}
		values = append(values, plotter.XY{X: s.X, Y: s.Value})
		derivatives = append(derivatives, plotter.XY{X: s.X, Y: s.Derivative})
	}
	return
}

// New creates a plot with the value and the derivative of the function sampled.
func New(title, inputName string, samples []sweep.Sample) (*plot.Plot, error) {
	values, derivatives := Lines(samples)
	if len(values) == 0 {
		return nil, errors.Errorf("plot %q: no finite samples to plot", title)
	}
	if len(values) < len(samples) {
		klog.Warningf("plot %q: skipped %d non-finite sample(s)", title, len(samples)-len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = inputName
	p.Y.Label.Text = "f"
	p.Add(plotter.NewGrid())

	valueLine, err := plotter.NewLine(values)
	if err != nil {
		return nil, errors.Wrapf(err, "plot %q: values line", title)
	}
	valueLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	derivativeLine, err := plotter.NewLine(derivatives)
	if err != nil {
		return nil, errors.Wrapf(err, "plot %q: derivatives line", title)
	}
	derivativeLine.Color = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	derivativeLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(valueLine, derivativeLine)
	p.Legend.Add("f("+inputName+")", valueLine)
	p.Legend.Add("f'("+inputName+")", derivativeLine)
	p.Legend.Top = true
	return p, nil
}

// Save plots the samples to filePath. The image format is given by the file extension (e.g.: ".png", ".svg").
func Save(filePath, title, inputName string, samples []sweep.Sample) error {
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return err
	}
	p, err := New(title, inputName, samples)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, filePath); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", filePath)
	}
	klog.V(1).Infof("plot saved to %q", filepath.Clean(filePath))
	return nil
}
