package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	dotenv "github.com/dsh2dsh/expx-dotenv"
	"github.com/spf13/cobra"
)

var (
	logLevel string

	rootCmd = cobra.Command{
		Use:   "agpdl",
		Short: "Download audit reports from https://agp.gov.pk/AuditReports",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvs(); err != nil {
				return err
			}
			return setupLogger(logLevel)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"logging level (debug, info, warn, error)")
}

func Execute(version string) {
	rootCmd.Version = version
	cobra.CheckErr(rootCmd.Execute())
}

func loadEnvs() error {
	if err := dotenv.New().WithDepth(1).Load(); err != nil {
		return fmt.Errorf("load agpdl envs: %w", err)
	}
	return nil
}

func setupLogger(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("unknown log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: l})))
	return nil
}
