package main

import (
	"os"

	log "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
	"github.com/tanutchapol/backend-ChatBot/pkg/logutil"
)

func main() {
	var (
		cfg      *config.Config
		logLevel string
	)

	root := &cobra.Command{
		Use:   "chatbot-api",
		Short: "Typhon chat gateway backed by Google Sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentFlags().StringVar(&logLevel, "loglevel", "", "Log level (trace, debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Warn("failed to load .env file, continuing with system environment", "err", err)
		}

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		if err := logutil.Configure(loaded.Log.Level); err != nil {
			return err
		}
		cfg = loaded
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Report whether Typhon and Google Sheets are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, cfg)
		},
	})

	if err := root.Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
