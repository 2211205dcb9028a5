// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pmid-pdf service and CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pmid-pdf/internal/config"
	"github.com/pdiddy/pmid-pdf/internal/logging"
	"github.com/pdiddy/pmid-pdf/internal/secrets"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// v holds layered configuration for the running command.
	v *viper.Viper

	// cfg and log are populated by PersistentPreRunE.
	cfg types.Config
	log *logrus.Logger
)

// flagKeys maps command-line flags onto configuration keys. Subcommands
// declare whichever of these they accept.
var flagKeys = map[string]string{
	"env":      "env",
	"host":     "server.host",
	"port":     "server.port",
	"pdf-root": "storage.pdf_root",
	"store":    "storage.driver",
	"db":       "storage.sqlite_path",
	"crawler":  "crawler.base_url",
}

// rootCmd is the base command for the pmid-pdf CLI.
var rootCmd = &cobra.Command{
	Use:   "pmid-pdf",
	Short: "Serve article PDFs by PubMed identifier",
	Long: `pmid-pdf returns the PDF of a PubMed article given its PMID. PDFs are
cached under a local root and tracked in a metadata store; a miss asks the
external crawler to download the article.

Run "pmid-pdf serve" for the HTTP API, or resolve PMIDs directly from the
command line with "pmid-pdf resolve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		v = config.New(cfgFile)
		used, err := config.ReadFile(v)
		if err != nil {
			return err
		}
		if used != "" {
			fmt.Fprintln(os.Stderr, "Using config file:", used)
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("binding --%s: %w", flag, err)
				}
			}
		}

		cfg, err = config.Load(v, s)
		if err != nil {
			return err
		}
		log, err = logging.New(cfg.Env, cfg.Logging)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pmid-pdf.yaml or ~/.config/pmid-pdf/pmid-pdf.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files")
	rootCmd.PersistentFlags().String("env", "", "environment: production, development or local")
	rootCmd.PersistentFlags().String("pdf-root", "", "directory holding cached PDFs")
	rootCmd.PersistentFlags().String("store", "", "metadata store driver: sqlite, mongo or memory")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
