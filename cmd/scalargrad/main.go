// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// scalargrad evaluates a scalar function and its derivative, built from a chain of operations.
//
// The function is either one of the built-in examples (-example) or described in a YAML file (-expr),
// see package internal/exprfile for the format.
//
// Examples:
//
//	scalargrad -example=singular -x=1 -graph
//	scalargrad -expr=~/exprs/f.yaml -set="slope=3" -sweep=-2:2:1000 -plot=f.png
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/scalargrad/internal/exprfile"
	"github.com/gomlx/scalargrad/internal/sweep"
	"github.com/gomlx/scalargrad/internal/workerspool"
	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/ui/commandline"
	"github.com/gomlx/scalargrad/ui/plots"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagExample = flag.String("example", "rational",
		fmt.Sprintf("Built-in function to evaluate, one of %s. Ignored if -expr is given.",
			strings.Join(exprfile.Examples(), ", ")))
	flagExpr = flag.String("expr", "", "YAML file describing the function to evaluate.")
	flagX    = flag.Float64("x", 0, "Input value. Defaults to the value given by the function description.")
	flagSet  = flag.String("set", "",
		"Values of named constants, in the format \"<leaf>=<value>;...\". "+
			"\"file:<path>\" reads settings from a file.")
	flagSweep = flag.String("sweep", "",
		"Evaluate the function and its derivative over a range, in the format \"from:to:steps\".")
	flagPlot = flag.String("plot", "",
		"Save a plot of the sweep to the given file (e.g.: \"f.png\"). Requires -sweep.")
	flagParallelism = flag.Int("parallelism", 0,
		"Maximum number of parallel evaluations of the sweep. If 0, uses the number of CPUs.")
	flagGraph = flag.Bool("graph", false, "Print the computation graph.")
	flagPlain = flag.Bool("plain", false, "Disable colors and styles in the output.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'scalargrad -help'.", flag.Args())
		os.Exit(1)
	}
	if *flagPlot != "" && *flagSweep == "" {
		klog.Errorf("-plot requires -sweep. See 'scalargrad -help'.")
		os.Exit(1)
	}
	if *flagPlain {
		commandline.SetPlain()
	}

	expr := loadExpr()
	settings := must.M1(commandline.ParseLeafSettings(*flagSet))
	unit := must.M1(expr.Build())
	values := must.M1(commandline.ResolveLeafSettings(unit, settings))
	must.M(values.Apply(unit))
	build := func() (*builder.Unit, error) {
		unit, err := expr.Build()
		if err != nil {
			return nil, err
		}
		if err := values.Apply(unit); err != nil {
			return nil, err
		}
		return unit, nil
	}

	x := expr.X
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "x" {
			x = *flagX
		}
	})
	commandline.ReportSummary(os.Stdout, expr.Name, unit, x)
	commandline.ReportGradients(os.Stdout, unit, x)
	if *flagGraph {
		must.M(commandline.ReportGraph(os.Stdout, unit))
	}

	if *flagSweep != "" {
		runSweep(expr, build)
	}
}

func loadExpr() *exprfile.Expr {
	if *flagExpr != "" {
		return must.M1(exprfile.Load(*flagExpr))
	}
	return must.M1(exprfile.Example(*flagExample))
}

func runSweep(expr *exprfile.Expr, build sweep.BuildFn) {
	r := must.M1(sweep.ParseRange(*flagSweep))
	pool := workerspool.New()
	if *flagParallelism > 0 {
		pool.SetMaxParallelism(*flagParallelism)
	}
	pBar := commandline.NewProgressBar(r.Steps, fmt.Sprintf("Sweeping %s", expr.Name))
	samples := must.M1(sweep.Run(pool, build, r.Points(), pBar.Increment))
	pBar.Finish()

	var numNonFinite int
	for _, s := range samples {
		if !s.IsFinite() {
			numNonFinite++
		}
	}
	if numNonFinite > 0 {
		klog.Warningf("%d of %d samples are not finite", numNonFinite, len(samples))
	}
	if *flagPlot != "" {
		title := expr.Name
		if expr.Description != "" {
			title = expr.Description
		}
		must.M(plots.Save(*flagPlot, title, expr.Input, samples))
		fmt.Printf("Plot saved to %q\n", *flagPlot)
	}
}
