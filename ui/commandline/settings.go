// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/pkg/core/graph"
	"github.com/gomlx/scalargrad/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// LeafSetting assigns Value to the leaf named Name.
type LeafSetting struct {
	Name  string
	Value float64
}

// ParseLeafSettings parses settings in the format "<leaf>=<value>;<leaf>=<value>;...".
//
// A setting in the format "file:<path>" reads more settings from the file, one or more per line.
// Empty lines and lines starting with "#" are ignored.
//
// Example:
//
//	var flagSet = flag.String("set", "", "Leaf settings, e.g.: \"mul_param0=3;add_param1=1\"")
//	...
//	settings, err := commandline.ParseLeafSettings(*flagSet)
func ParseLeafSettings(settings string) ([]LeafSetting, error) {
	var parsed []LeafSetting
	for _, setting := range strings.Split(settings, ";") {
		var err error
		parsed, err = parseLeafSetting(setting, parsed)
		if err != nil {
			return nil, err
		}
	}
	return parsed, nil
}

func parseLeafSetting(setting string, parsed []LeafSetting) ([]LeafSetting, error) {
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return parsed, nil
	}
	if filePath, found := strings.CutPrefix(setting, "file:"); found {
		filePath, err := fsutil.ReplaceTilde(filePath)
		if err != nil {
			return nil, err
		}
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read settings from file %q", filePath)
		}
		for _, line := range strings.Split(string(contents), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			for _, lineSetting := range strings.Split(line, ";") {
				parsed, err = parseLeafSetting(lineSetting, parsed)
				if err != nil {
					return nil, err
				}
			}
		}
		return parsed, nil
	}

	name, valueStr, found := strings.Cut(setting, "=")
	if !found || name == "" {
		return nil, errors.Errorf("can't parse setting %q: each setting requires the format \"<leaf>=<value>\"", setting)
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(valueStr, "_", ""), 64)
	if err != nil {
		return nil, errors.Wrapf(err, "can't parse value of setting %q", setting)
	}
	return append(parsed, LeafSetting{Name: name, Value: value}), nil
}

// LeafValues holds the values of leaves indexed by their position in Unit.Leaves(), see ResolveLeafSettings.
type LeafValues map[int]float64

// ResolveLeafSettings looks up the leaves named by settings in unit, and returns their values by position.
//
// Units built from the same description have the same leaves in the same order, but their automatically
// named constants ("mul_param3") differ from one build to the next. So settings are resolved against the
// first build, and the returned LeafValues are applied to every other build with LeafValues.Apply.
//
// The input leaf can't be set, since its value is given at each evaluation.
func ResolveLeafSettings(unit *builder.Unit, settings []LeafSetting) (LeafValues, error) {
	values := make(LeafValues, len(settings))
	leaves := unit.Leaves()
	for _, setting := range settings {
		position := slices.IndexFunc(leaves, func(leaf *graph.Variable) bool { return leaf.Name() == setting.Name })
		if position < 0 {
			return nil, errors.Errorf("unknown leaf %q, valid leaves are %q", setting.Name, leafNames(leaves))
		}
		if leaves[position] == unit.Input() {
			return nil, errors.Errorf("leaf %q is the input, its value is given by -x or -sweep", setting.Name)
		}
		values[position] = setting.Value
	}
	return values, nil
}

// Apply sets the values of the unit's leaves. It fails if unit doesn't have the leaves the values were
// resolved for.
func (values LeafValues) Apply(unit *builder.Unit) error {
	leaves := unit.Leaves()
	for position, value := range values {
		if position >= len(leaves) || leaves[position] == unit.Input() {
			return errors.Errorf("leaf #%d can't be set, the unit has %d leaves: %q",
				position, len(leaves), leafNames(leaves))
		}
		leaves[position].SetValue(value)
	}
	return nil
}

// ApplyLeafSettings sets the values of the unit's leaves by name. See ResolveLeafSettings.
func ApplyLeafSettings(unit *builder.Unit, settings []LeafSetting) error {
	values, err := ResolveLeafSettings(unit, settings)
	if err != nil {
		return err
	}
	return values.Apply(unit)
}
