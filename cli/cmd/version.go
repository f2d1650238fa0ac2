package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/ardnew/rts/pkg"
)

// Version prints the version of rts.
type Version struct {
	Verbose bool `help:"Include the Go version and platform" short:"v"`
}

// Run executes the version command.
func (v *Version) Run(context.Context) error {
	if !v.Verbose {
		_, err := fmt.Println(pkg.Name, pkg.Version)

		return err
	}

	_, err := fmt.Fprintf(os.Stdout, "%s %s (%s %s/%s)\n",
		pkg.Name, pkg.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}

// Package bundles a script with its sources into a standalone executable.
type Package struct {
	Script string `arg:"" help:"Script file (*.rt)" name:"script" type:"existingfile"`
	Output string `help:"Output executable path" short:"o" type:"path"`
}

// Run executes the package command.
func (p *Package) Run(context.Context) error {
	return ErrNotImplemented.With(slog.String("command", "package"))
}
