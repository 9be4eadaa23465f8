package commands

import (
	"fmt"
	"os"

	"imdbdata/lib/scrapers/imdb"

	"github.com/spf13/cobra"
)

var quicksyncOutput *string

func init() {
	quicksyncOutput = quicksyncCmd.Flags().StringP("output", "o", "", "CSV watchlist file to refresh")
	quicksyncCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(quicksyncCmd)
}

var quicksyncCmd = &cobra.Command{
	Use:   "watchlist-quicksync -o <watchlist.csv>",
	Short: "Re-exports the watchlist CSV only when the watchlist changed since.",
	Run: func(cmd *cobra.Command, args []string) {
		stat, err := os.Stat(*quicksyncOutput)
		if err != nil {
			fatal("failed to stat csv", err)
		}

		info, err := client.WatchlistInfo(cmd.Context())
		if err != nil {
			fatal("failed to fetch watchlist page", err)
		}

		if stat.ModTime().After(info.LastModified) {
			fmt.Fprintf(os.Stderr, "%s is up-to-date\n", *quicksyncOutput)
			return
		}
		if info.ListId == "" {
			fatal("watchlist page carried no list id", fmt.Errorf("cannot export"))
		}

		fmt.Fprintln(os.Stderr, "Exporting latest watchlist...")
		body, err := client.GetExport(cmd.Context(), imdb.Selector{
			Kind:   imdb.SelectList,
			ListID: info.ListId,
		}, imdb.ResolveOptions{})
		if err != nil {
			fatal("failed to export watchlist", err)
		}

		err = os.WriteFile(*quicksyncOutput, body, 0644)
		if err != nil {
			fatal("failed to write csv", err)
		}
	},
}
