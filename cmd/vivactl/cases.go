package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/spf13/cobra"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Inspect the case library",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := cases.Load(settings.GetString("examiner_case_library_dir"), cliLogger())
		if err != nil {
			return err
		}
		all, err := lib.List(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, c := range all {
			fmt.Fprintf(out, "%s  %s %s\n", cyan(c.ID), c.Title, gray("("+c.Specialty+", "+c.Difficulty+")"))
		}
		return nil
	},
}

var casesValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate YAML case files",
	Long:  `Parse and validate every case in dir, or the built-in library when dir is omitted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		var count int
		if len(args) == 0 {
			lib, err := cases.Load("", cliLogger())
			if err != nil {
				fmt.Fprintf(out, "%s %v\n", red("invalid:"), err)
				return err
			}
			count = lib.Len()
		} else {
			parsed, err := cases.ParseFS(os.DirFS(args[0]), ".")
			if err != nil {
				fmt.Fprintf(out, "%s %v\n", red("invalid:"), err)
				return err
			}
			for _, c := range parsed {
				fmt.Fprintf(out, "  %s %s\n", green("ok"), c.ID)
			}
			count = len(parsed)
		}
		fmt.Fprintf(out, "%s %d case(s) valid\n", green("✓"), count)
		return nil
	},
}

func init() {
	casesCmd.AddCommand(casesListCmd, casesValidateCmd)
	rootCmd.AddCommand(casesCmd)
}
