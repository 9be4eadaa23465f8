package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var importCookieHeader *string

func init() {
	importCookieHeader = importCookiesCmd.Flags().String("cookie", os.Getenv("IMDB_COOKIE"), "imdb.com Cookie header value")
	rootCmd.AddCommand(importCookiesCmd)
	rootCmd.AddCommand(dumpCookiesCmd)
}

var importCookiesCmd = &cobra.Command{
	Use:   "import-cookies --cookie \"name=value; name2=value2\"",
	Short: "Imports a browser Cookie header into the cookie store.",
	Run: func(cmd *cobra.Command, args []string) {
		if *importCookieHeader == "" {
			fatal("no cookie header given", fmt.Errorf("pass --cookie or set IMDB_COOKIE"))
		}

		cookies := map[string]string{}
		for name, value := range origCookies {
			cookies[name] = value
		}
		for _, pair := range strings.Split(strings.TrimSpace(*importCookieHeader), ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok {
				fatal("malformed cookie header", fmt.Errorf("bad pair %q", pair))
			}
			cookies[name] = value
		}

		err := store.Save(cmd.Context(), cookies)
		if err != nil {
			fatal("failed to save cookies", err)
		}
		// keep the post-run diff from rewriting what was just saved
		origCookies = cookies
	},
}

var dumpCookiesCmd = &cobra.Command{
	Use:   "dump-cookies",
	Short: "Prints the stored cookies as a Cookie header.",
	Run: func(cmd *cobra.Command, args []string) {
		names := make([]string, 0, len(origCookies))
		for name := range origCookies {
			names = append(names, name)
		}
		sort.Strings(names)

		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s=%s", name, origCookies[name]))
		}
		fmt.Println(strings.Join(pairs, "; "))
	},
}
