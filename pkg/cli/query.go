package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchd-io/searchd/pkg/sources"
	"github.com/searchd-io/searchd/pkg/types"
)

var (
	queryPage    int
	queryPerPage int
)

var queryCmd = &cobra.Command{
	Use:   "query <terms...>",
	Short: "Run a one-shot search against the gateway",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := sources.NewHTTPSource(gatewayHTTPAddr, nil)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		resp, err := source.Search(ctx, types.SearchRequest{
			Query:   strings.Join(args, " "),
			Page:    queryPage,
			PerPage: queryPerPage,
		})
		if err != nil {
			PrintError(err)
			return err
		}

		PrintResults(resp)
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryPage, "page", 0, "Result page")
	queryCmd.Flags().IntVar(&queryPerPage, "per-page", 0, "Results per page")
	queryCmd.SilenceUsage = true
	queryCmd.SilenceErrors = true
}
