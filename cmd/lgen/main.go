// Command lgen is a thin CLI over the L-system rewriter and the geometry
// flatten/unflatten codec.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
