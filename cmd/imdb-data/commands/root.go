package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"imdbdata/lib/configutil"
	"imdbdata/lib/cookiestore"
	"imdbdata/lib/restyutil"
	"imdbdata/lib/scrapers/imdb"
	"imdbdata/lib/telemetry"

	"github.com/spf13/cobra"
)

// Config mirrors the persistent flags; config.json5 supplies defaults
// and flags win when set explicitly.
type Config struct {
	Cookies string `json:"cookies"`
	Listing string `json:"listing"`
}

var (
	cookiesFlag string
	listingFlag string
	verboseFlag bool

	store       cookiestore.Store
	origCookies map[string]string
	client      *imdb.Client
)

var rootCmd = &cobra.Command{
	Use:   "imdb-data",
	Short: "imdb-data requests, polls and downloads imdb.com user-data exports.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verboseFlag)
		if verboseFlag {
			imdb.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/imdb"))
		}

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err == nil {
			if !cmd.Flags().Changed("cookies") && cfg.Cookies != "" {
				cookiesFlag = cfg.Cookies
			}
			if !cmd.Flags().Changed("listing") && cfg.Listing != "" {
				listingFlag = cfg.Listing
			}
		}

		store, err = cookiestore.Open(cookiesFlag)
		if err != nil {
			fatal("failed to open cookie store", err)
		}
		origCookies, err = store.Load(cmd.Context())
		if err != nil {
			fatal("failed to load cookies", err)
		}

		client, err = imdb.NewClient(imdb.ClientOptions{
			Cookies: origCookies,
			Listing: imdb.ListingStrategy(listingFlag),
		})
		if err != nil {
			fatal("failed to initialize imdb client", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		persistCookies(cmd.Context(), client.Cookies())
		store.Close()
	},
}

// save the bag back only when something actually changed
func persistCookies(ctx context.Context, cookies map[string]string) {
	if !cookiestore.Changed(origCookies, cookies) {
		slog.Debug("no changes to cookies")
		return
	}
	slog.Info("saving cookies")
	merged := map[string]string{}
	for name, value := range origCookies {
		merged[name] = value
	}
	for name, value := range cookies {
		merged[name] = value
	}
	err := store.Save(ctx, merged)
	if err != nil {
		slog.Error("failed to save cookies", "err", err)
	}
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func init() {
	cookieEnv := os.Getenv("IMDB_COOKIE_FILE")
	if cookieEnv == "" {
		cookieEnv = "cookies.db"
	}
	rootCmd.PersistentFlags().StringVarP(&cookiesFlag, "cookies", "c", cookieEnv, "imdb.com cookie database file")
	rootCmd.PersistentFlags().StringVar(&listingFlag, "listing", "page", "export listing source, either \"page\" or \"graphql\"")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", os.Getenv("ACTIONS_RUNNER_DEBUG") != "", "enable verbose logging")
}

// exitCode lets commands fail with a non-zero status without skipping
// the PersistentPostRun cookie save.
var exitCode int

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
