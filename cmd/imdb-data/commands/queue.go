package commands

import (
	"fmt"
	"time"

	"imdbdata/lib/scrapers/imdb"

	"github.com/spf13/cobra"
)

var statusSince *time.Duration

func init() {
	rootCmd.AddCommand(queueCmd)
	statusSince = statusCmd.Flags().DurationP("since", "s", time.Hour, "ignore exports started longer ago than this")
	rootCmd.AddCommand(statusCmd)
}

var queueCmd = &cobra.Command{
	Use:   "queue <watchlist|ratings|ls...>",
	Short: "Enqueues a fresh export without waiting for it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sel, err := imdb.ParseSelector(args[0])
		if err != nil {
			fatal("invalid export id", err)
		}
		err = client.QueueExport(cmd.Context(), sel)
		if err != nil {
			fatal("failed to enqueue export", err)
		}
		fmt.Println("queued")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <watchlist|ratings|ls...>",
	Short: "Checks the state of an export without side effects.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sel, err := imdb.ParseSelector(args[0])
		if err != nil {
			fatal("invalid export id", err)
		}
		outcome, err := client.ExportStatus(cmd.Context(), sel, time.Now().Add(-*statusSince))
		if err != nil {
			fatal("failed to check export status", err)
		}
		if outcome.Url != "" {
			fmt.Println(outcome.Status, outcome.Url)
			return
		}
		fmt.Println(outcome.Status)
	},
}
