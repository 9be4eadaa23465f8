package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(userIdCmd)
	rootCmd.AddCommand(watchlistIdCmd)
}

var userIdCmd = &cobra.Command{
	Use:   "user-id",
	Short: "Prints the signed-in user's id.",
	Run: func(cmd *cobra.Command, args []string) {
		info, err := client.WatchlistInfo(cmd.Context())
		if err != nil {
			fatal("failed to fetch watchlist page", err)
		}
		fmt.Println(info.UserId)
	},
}

var watchlistIdCmd = &cobra.Command{
	Use:   "watchlist-id",
	Short: "Prints the list id of the signed-in user's watchlist.",
	Run: func(cmd *cobra.Command, args []string) {
		info, err := client.WatchlistInfo(cmd.Context())
		if err != nil {
			fatal("failed to fetch watchlist page", err)
		}
		fmt.Println(info.ListId)
	},
}
