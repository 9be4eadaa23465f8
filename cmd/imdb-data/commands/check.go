package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	checkWatchlistUserId *string
	checkRatingsUserId   *string
)

func init() {
	checkWatchlistUserId = checkWatchlistCmd.Flags().StringP("user-id", "u", os.Getenv("IMDB_USER_ID"), "imdb user id (ur...)")
	checkRatingsUserId = checkRatingsCmd.Flags().StringP("user-id", "u", os.Getenv("IMDB_USER_ID"), "imdb user id (ur...)")
	checkCmd.AddCommand(checkWatchlistCmd)
	checkCmd.AddCommand(checkRatingsCmd)
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compares a local export CSV against the live site.",
}

var checkWatchlistCmd = &cobra.Command{
	Use:   "watchlist <watchlist.csv>",
	Short: "Reports whether a watchlist CSV is older than the watchlist.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stat, err := os.Stat(args[0])
		if err != nil {
			fatal("failed to stat csv", err)
		}

		info, err := client.WatchlistInfo(cmd.Context(), *checkWatchlistUserId)
		if err != nil {
			fatal("failed to fetch watchlist page", err)
		}

		if !stat.ModTime().After(info.LastModified) {
			fmt.Println("outdated=true")
		} else {
			fmt.Println("outdated=false")
		}
	},
}

var checkRatingsCmd = &cobra.Command{
	Use:   "ratings <ratings.csv>",
	Short: "Reports whether a ratings CSV is missing recently rated titles.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		csvTitleIds, err := readTitleIds(args[0])
		if err != nil {
			fatal("failed to read csv", err)
		}

		info, err := client.RatingsInfo(cmd.Context(), *checkRatingsUserId)
		if err != nil {
			fatal("failed to fetch ratings page", err)
		}

		for _, titleId := range info.RecentTitleIds {
			if !csvTitleIds[titleId] {
				fmt.Println("outdated=true")
				return
			}
		}
		fmt.Println("outdated=false")
	},
}

// reads the "Const" column of a ratings export CSV
func readTitleIds(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	constColumn := -1
	for i, name := range header {
		if name == "Const" {
			constColumn = i
			break
		}
	}
	if constColumn < 0 {
		return nil, fmt.Errorf("csv has no Const column")
	}

	ids := map[string]bool{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ids[row[constColumn]] = true
	}
	return ids, nil
}
