// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package main is the entry point for repoharvest, a thin CLI driver
// over the pkg/manager façade.
package main

import (
	"github.com/archmagece/repoharvest/cmd/repoharvest/cmd"
)

var version = "dev"

func main() {
	cmd.Execute(version)
}
