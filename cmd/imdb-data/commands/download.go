package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"imdbdata/lib/scrapers/imdb"

	"github.com/spf13/cobra"
)

var (
	downloadOutput  *string
	downloadSince   *time.Duration
	downloadMaxWait *time.Duration
)

func init() {
	downloadOutput = downloadCmd.Flags().StringP("output", "o", "-", "CSV output file, \"-\" for stdout")
	downloadSince = downloadCmd.Flags().DurationP("since", "s", time.Hour, "how old an existing export may be before a fresh one is requested")
	downloadMaxWait = downloadCmd.Flags().Duration("max-wait", imdb.DefaultMaxWait, "how long to wait for the export to become ready")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <watchlist|ratings|ls...>",
	Short: "Resolves an export (enqueueing one if needed) and downloads it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sel, err := imdb.ParseSelector(args[0])
		if err != nil {
			fatal("invalid export id", err)
		}

		body, err := client.GetExport(cmd.Context(), sel, imdb.ResolveOptions{
			NotBefore: time.Now().Add(-*downloadSince),
			MaxWait:   *downloadMaxWait,
		})
		if errors.Is(err, imdb.ErrExportNotFound) || errors.Is(err, imdb.ErrExportTimeout) {
			// deferred exit so the cookie bag still gets persisted
			fmt.Fprintln(os.Stderr, "No export found")
			exitCode = 1
			return
		}
		if err != nil {
			fatal("failed to download export", err)
		}

		if *downloadOutput == "-" {
			os.Stdout.Write(body)
			return
		}
		err = os.WriteFile(*downloadOutput, body, 0644)
		if err != nil {
			fatal("failed to write output file", err)
		}
	},
}
