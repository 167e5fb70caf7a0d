// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vidra-media/vidra/internal/buildinfo"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vidra",
		Short: "Media indexing and streaming backend",
		Long:  "vidra indexes video files under watched folders and streams them to player clients with seek support.",
	}

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RunVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Print(buildinfo.String())
		},
	}
}
