package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launchtrack/timeclock/internal/config"
)

var sheetsCfgPath string

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Spreadsheet maintenance",
}

var sheetsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the operator and config worksheets up front",
	Args:  cobra.NoArgs,
	RunE:  runSheetsInit,
}

func init() {
	sheetsInitCmd.Flags().StringVar(&sheetsCfgPath, "config", "", "Config file (default ~/.timeclock/config.yaml)")
	sheetsCmd.AddCommand(sheetsInitCmd)
}

func runSheetsInit(cmd *cobra.Command, args []string) error {
	path := sheetsCfgPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg, config.SecretsFromEnv())
	if err != nil {
		return err
	}
	if err := st.EnsureSheets(ctx); err != nil {
		return fmt.Errorf("preparing worksheets: %w", err)
	}

	fmt.Printf("Spreadsheet %q ready: %d operator sheet(s), fallback %q\n",
		cfg.Spreadsheet, len(cfg.Operators), cfg.FallbackSheet)
	return nil
}
