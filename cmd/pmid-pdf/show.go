// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pmid-pdf/internal/pdffile"
	"github.com/pdiddy/pmid-pdf/internal/store"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <pmid>",
	Short: "Print the stored record for a PMID without fetching",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// shownRecord adds the on-disk check to a stored record.
type shownRecord struct {
	Record    *types.ArticleRecord `yaml:"record"`
	PDFPath   string               `yaml:"pdf_path,omitempty"`
	PDFOnDisk bool                 `yaml:"pdf_on_disk"`
}

func runShow(cmd *cobra.Command, args []string) error {
	pmid := args[0]

	st, err := store.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}
	defer st.Close()

	rec, err := st.Find(cmd.Context(), pmid)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no record for PMID %s", pmid)
	}

	out := shownRecord{Record: rec}
	if rec.RelativePath != nil {
		out.PDFPath = filepath.Join(cfg.Storage.PDFRoot, *rec.RelativePath, pdffile.FileName)
		out.PDFOnDisk = pdffile.ExistsNonEmpty(out.PDFPath)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
