package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the build version, checked against a scene's optional
// min-scene-version field via x/mod/semver. Set via
// -ldflags "-X main.Version=v1.2.3"; defaults to "dev" (no version check)
// for local builds.
var Version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lgen",
	Short: "Generative L-system rewriter and geometry flatten/unflatten codec",
	Long: `lgen drives a context-sensitive, stochastic L-system rewriter and a
geometry flatten/unflatten codec from YAML scene files, independent of any
particular turtle interpreter or rendering target.`,
	SilenceUsage: true,
	Version:      Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostics to stderr")
}

func fatalf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func stderrf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
