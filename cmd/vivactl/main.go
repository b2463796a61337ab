// Command vivactl inspects the case library and runs offline practice exams
// against the rule-based examiner.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:           "vivactl",
	Short:         "Oral exam practice and case library tooling",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	settings.SetEnvPrefix("VIVA")
	settings.AutomaticEnv()

	rootCmd.PersistentFlags().String("cases-dir", "", "directory of YAML cases overlaid on the built-in library")
	rootCmd.PersistentFlags().Bool("verbose", false, "log library loading details")
	_ = settings.BindPFlag("examiner_case_library_dir", rootCmd.PersistentFlags().Lookup("cases-dir"))
	_ = settings.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func cliLogger() *slog.Logger {
	if !settings.GetBool("verbose") {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
