// Package main is the entry point for the reelnotes application.
package main

import (
	"github.com/reelnotes/reelnotes/cmd"
	"github.com/reelnotes/reelnotes/config"
	"github.com/reelnotes/reelnotes/internal/cache"
	"github.com/reelnotes/reelnotes/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Prune expired disk cache entries in the background.
	go cache.CollectGarbage()

	cmd.Execute()
}
