package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/geocolumn"
	"github.com/nao1215/geocolumn/internal/serp"
)

func newSerpCmd(g *globalOptions) *cobra.Command {
	opts := serp.DefaultOptions()
	var output string

	cmd := &cobra.Command{
		Use:   "serp",
		Short: "Collect the first page of Google results for a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts.Logger = g.logger
			g.logger.Info("searching", "query", opts.Query, "headless", opts.Headless)

			results, err := serp.Search(ctx, opts)
			if err != nil {
				return g.fail("serp", err)
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Title, r.URL)
			}

			exportOpts, err := exportOptions(output, "", "")
			if err != nil {
				return g.fail("serp", err)
			}
			written, err := geocolumn.ExportTable(ctx, serp.ToTable(results), output, exportOpts)
			if err != nil {
				return g.fail("serp", err)
			}
			g.logger.Info("results saved", "path", written, "results", len(results))
			fmt.Fprintf(cmd.OutOrStdout(), "\nresults saved to: %s\n", written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", serp.DefaultQuery, "Search term")
	cmd.Flags().StringVarP(&output, "output", "o", serp.DefaultOutput, "Output file")
	cmd.Flags().BoolVar(&opts.Headless, "headless", true, "Run the browser without a window")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", serp.DefaultTimeout, "Browser session timeout")
	return cmd
}
