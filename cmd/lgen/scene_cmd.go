package main

import (
	"github.com/spf13/cobra"

	"github.com/aledsdavies/lgen/pkgs/fingerprint"
	"github.com/aledsdavies/lgen/pkgs/scene"
)

var sceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "Inspect and validate YAML scene files",
}

var sceneValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Load and schema-validate a scene file, reporting its rule table fingerprint",
	Args:  cobra.ExactArgs(1),
	RunE:  runSceneValidate,
}

func init() {
	sceneCmd.AddCommand(sceneValidateCmd)
	rootCmd.AddCommand(sceneCmd)
}

func runSceneValidate(cmd *cobra.Command, args []string) error {
	sc, err := scene.LoadFile(args[0], Version)
	if err != nil {
		return fatalf("%v", err)
	}

	cmd.Printf("axiom: %s\n", sc.Axiom)
	cmd.Printf("iterations: %d\n", sc.Iterations)
	cmd.Printf("mode: %s\n", sc.Mode)
	cmd.Printf("rules: %d distinct LHS\n", sc.Table.Table.Len())
	cmd.Printf("rule table fingerprint: %s\n", fingerprint.RuleTable(sc.Table.Table))
	return nil
}
