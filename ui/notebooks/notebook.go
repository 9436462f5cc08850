// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package notebooks checks whether the program is running within a Jupyter notebook, where terminal
// ANSI codes (cursor movement, colors) are not supported.
// It supports GoNB [1] and bash_kernel [2].
//
// [1] GoNB: https://github.com/janpfeifer/gonb
// [2] bash_kernel: https://github.com/takluyver/bash_kernel
package notebooks

import "os"

const (
	bashKernelEnv = "NOTEBOOK_BASH_KERNEL_CAPABILITIES"
	goNBKernelEnv = "GONB_PIPE"
)

// IsNotebook returns whether running inside a Jupyter notebook.
func IsNotebook() bool {
	return isSet(bashKernelEnv) || isSet(goNBKernelEnv)
}

func isSet(env string) bool {
	_, found := os.LookupEnv(env)
	return found
}
