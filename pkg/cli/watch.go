package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchd-io/searchd/pkg/debounce"
	"github.com/searchd-io/searchd/pkg/fetch"
	"github.com/searchd-io/searchd/pkg/sources"
	"github.com/searchd-io/searchd/pkg/types"
)

var watchDelay time.Duration

// watchKey is the trigger key for the local coordinator
type watchKey struct {
	Query string
	Page  int
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive typeahead loop (debounced, client-side)",
	Long: `Reads query revisions from stdin, one per line. Input is debounced
locally; each settled query fetches from the gateway, and a newer query
cancels the fetch in flight. Ctrl-D exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source := sources.NewHTTPSource(gatewayHTTPAddr, nil)

		fetcher := fetch.FetcherFunc[watchKey, *types.SearchResponse](
			func(ctx context.Context, key watchKey) (*types.SearchResponse, error) {
				return source.Search(ctx, types.SearchRequest{Query: key.Query, Page: key.Page})
			})

		coordinator := fetch.NewCoordinator[watchKey, *types.SearchResponse](fetcher,
			fetch.WithName("watch"),
			fetch.WithBaseContext(cmd.Context()),
		)
		defer coordinator.Close()

		debouncer := debounce.New(watchDelay, func(q string) {
			coordinator.Observe(watchKey{Query: q})
		})
		defer debouncer.Close()

		// Render snapshots as they settle
		done := make(chan struct{})
		go func() {
			defer close(done)
			for snap := range coordinator.Updates() {
				renderSnapshot(snap)
			}
		}()

		PrintInfo(fmt.Sprintf("type to search (debounce %s), Ctrl-D to exit", watchDelay))

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			debouncer.Set(scanner.Text())
		}

		debouncer.Close()
		coordinator.Close()
		<-done
		return scanner.Err()
	},
}

func renderSnapshot(snap fetch.Snapshot[*types.SearchResponse]) {
	switch {
	case snap.Loading:
		fmt.Printf("  %s\n", DimStyle.Render("searching..."))
	case snap.Err != nil:
		PrintError(snap.Err)
	case snap.Data != nil:
		PrintResults(snap.Data)
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchDelay, "delay", 300*time.Millisecond, "Debounce delay")
	watchCmd.SilenceUsage = true
}
