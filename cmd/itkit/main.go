package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"itkit/internal/cli"
	"itkit/internal/cli/commands"
	"itkit/internal/config"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "itkit",
		Short:         "Integration test harness for build plugins",
		Long:          `Unpack fixture projects, run the build tool against them in parallel and check the reports and console output each build leaves behind.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Replaced in place once flags are parsed
	cfg := config.New()

	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
