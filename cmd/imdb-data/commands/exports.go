package commands

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportsCmd)
}

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Prints the export jobs currently visible to the session.",
	Run: func(cmd *cobra.Command, args []string) {
		jobs, err := client.ListExports(cmd.Context())
		if err != nil {
			fatal("failed to fetch export listing", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Type", "List", "Name", "Started", "Status"})

		for _, job := range jobs {
			t.AppendRow(table.Row{
				job.Kind,
				job.List.Id,
				job.List.Name,
				job.StartedAt.Format(time.RFC3339),
				job.Status,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
