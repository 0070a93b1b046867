package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
	"github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
)

func runCheck(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "typhon base url:   %v\n", cfg.Upstream.BaseURL != "")
	fmt.Fprintf(out, "typhon api key:    %v\n", cfg.Upstream.APIKey != "")
	fmt.Fprintf(out, "typhon model:      %s\n", cfg.Upstream.Model)
	fmt.Fprintf(out, "candidate paths:   %v\n", cfg.Upstream.CandidatePaths)
	fmt.Fprintf(out, "spreadsheet id:    %v\n", cfg.Sheets.SpreadsheetID != "")

	if _, err := sheets.NewService(cmd.Context(), cfg.Sheets.CredentialsFile); err != nil {
		fmt.Fprintf(out, "sheets credentials: error (%v)\n", err)
	} else {
		fmt.Fprintf(out, "sheets credentials: ok (%s)\n", cfg.Sheets.CredentialsFile)
	}
	fmt.Fprintf(out, "token store:       %s\n", cfg.Auth.TokenStore)
	fmt.Fprintf(out, "chat log driver:   %s\n", cfg.ChatLog.Driver)

	if !cfg.Upstream.Ready() {
		return fmt.Errorf("typhon is not configured: set AITYPHON_BASE_URL and AITYPHON_API_KEY")
	}
	return nil
}
