package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agpdl/agpdl/client"
	"github.com/agpdl/agpdl/internal/listing"
	"github.com/agpdl/agpdl/internal/report"
)

var (
	filterYears  []string
	filterQuery  string
	filterLimit  int
	metadataPath string
)

func registerFilterFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&filterYears, "year", nil,
		"year labels or codes to filter (e.g. 2024-2025 or y14)")
	c.Flags().StringVarP(&filterQuery, "query", "q", "",
		"filter reports whose titles contain this substring (case-insensitive)")
	c.Flags().IntVar(&filterLimit, "limit", -1,
		"limit the number of reports to process after filtering")
}

// selectedReports fetches and parses the listing, then applies the filter
// and limit flags. A failed listing fetch is fatal to the run.
func selectedReports(ctx context.Context, c *client.Client,
) ([]report.Report, error) {
	markup, err := c.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	reports, err := listing.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	slog.Info("parsed reports from listing", slog.Int("length", len(reports)))

	if len(filterYears) > 0 || filterQuery != "" {
		reports = report.Filter(reports, filterYears, filterQuery)
	}
	if filterLimit >= 0 && filterLimit < len(reports) {
		reports = reports[:filterLimit]
	}
	return reports, nil
}

func writeMetadata(path string, reports []report.Report) error {
	b, err := json.MarshalIndent(report.ToPlain(reports), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	b = append(b, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write metadata %q: %w", path, err)
	}
	log.Printf("wrote metadata to %v", path)
	return nil
}
