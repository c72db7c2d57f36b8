//go:build !windows

package main

import (
	"io"

	"github.com/spf13/cobra"
)

func addPlatformCommands(*cobra.Command, *globalOptions) {}

func demoProcess(io.Writer) error { return nil }
