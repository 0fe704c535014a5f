package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/agpdl/agpdl/cmd/internal/common"
)

var listCmd = cobra.Command{
	Use:   "list",
	Short: "Print a short summary of matched reports without downloading",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := common.NewClient(0)
		cobra.CheckErr(err)

		reports, err := selectedReports(context.Background(), c)
		cobra.CheckErr(err)
		if len(reports) == 0 {
			log.Println("no reports matched the given filters.")
			return
		}

		for i := range reports {
			r := &reports[i]
			fmt.Printf("%04d | %s | %s\n", r.Serial, r.DateText, r.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(&listCmd)
	registerFilterFlags(&listCmd)
}
