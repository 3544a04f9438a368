// Package main checks world and catalog data files before they are served.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "validate",
	Short:         "Validate MUD data files",
	Long:          `Validate checks world and catalog files against their schemas and against each other.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var worldCmd = &cobra.Command{
	Use:   "world <file...>",
	Short: "Validate world files",
	Long:  `Check room ids, duplicate rooms and exits. Transitions are followed only into worlds given on the command line.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := NewValidator()
		v.ValidateWorldFiles(args)
		return report(cmd, v, fmt.Sprintf("%d world file(s)", len(args)))
	},
}

var contentCmd = &cobra.Command{
	Use:   "content <data-dir>",
	Short: "Validate a full data directory",
	Long:  `Check the item, npc and mob catalogs and every world under <data-dir>/worlds, including references between them.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := NewValidator()
		v.ValidateDir(args[0])
		return report(cmd, v, args[0])
	},
}

func report(cmd *cobra.Command, v *Validator, what string) error {
	if err := v.Err(); err != nil {
		return fmt.Errorf("validation failed for %s: %w", what, err)
	}
	cmd.Printf("%s is valid!\n", what)
	return nil
}

func init() {
	rootCmd.AddCommand(worldCmd)
	rootCmd.AddCommand(contentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
