// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmid-pdf/internal/resolve"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [pmids...]",
	Short: "Resolve PMIDs to PDFs, fetching any that are not cached",
	Long: `Resolve runs each PMID through the same cache-then-fetch path as the
HTTP API and prints one JSON line per PMID. The command fails if any PMID
could not be resolved.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("crawler", "", "crawler base URL")

	rootCmd.AddCommand(resolveCmd)
}

// resolveLine is one line of resolve output.
type resolveLine struct {
	PMID       string            `json:"pmid"`
	Resolution *types.Resolution `json:"resolution,omitempty"`
	Code       string            `json:"code,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PMIDs")
	}

	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, pmid := range args {
		line := resolveLine{PMID: pmid}
		res, err := d.engine.Resolve(cmd.Context(), pmid)
		if err != nil {
			failed++
			line.Error = err.Error()
			var re *resolve.Error
			if errors.As(err, &re) {
				line.Code = re.Code.String()
				line.Error = re.Message
			}
		} else {
			line.Resolution = res
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d PMID(s) could not be resolved", failed)
	}
	return nil
}
