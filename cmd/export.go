package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/agpdl/agpdl/cmd/internal/common"
	"github.com/agpdl/agpdl/internal/report"
)

var exportCmd = cobra.Command{
	Use:   "export",
	Short: "Write metadata of matched reports as JSON",
	Long: `Export projects every matched report into a flat JSON object with its
serial, title, date, download link, year classification and status. Without
--metadata the array is written to stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := common.NewClient(0)
		cobra.CheckErr(err)

		reports, err := selectedReports(context.Background(), c)
		cobra.CheckErr(err)

		if metadataPath != "" {
			cobra.CheckErr(writeMetadata(metadataPath, reports))
			return
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		cobra.CheckErr(enc.Encode(report.ToPlain(reports)))
	},
}

func init() {
	rootCmd.AddCommand(&exportCmd)
	registerFilterFlags(&exportCmd)
	exportCmd.Flags().StringVarP(&metadataPath, "metadata", "m", "",
		"write the JSON to this file instead of stdout")
}
