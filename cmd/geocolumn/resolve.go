package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/geocolumn"
	"github.com/nao1215/geocolumn/domain/model"
)

type resolveOptions struct {
	category    string
	output      string
	format      string
	compression string
	encoding    string
}

func newResolveCmd(g *globalOptions) *cobra.Command {
	o := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve the four locality columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("category") {
				o.category = g.cfg.Category
			}
			return runResolve(cmd, g, o, args[0])
		},
	}

	cmd.Flags().StringVar(&o.category, "category", geocolumn.CityMarker, "Keep only rows of this category (empty keeps all)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Export the projection to this path")
	cmd.Flags().StringVar(&o.format, "format", "", "Export format: csv, tsv, ltsv, parquet, xlsx (default: from --output)")
	cmd.Flags().StringVar(&o.compression, "compression", "", "Export compression: none, gz, xz, zst (default: from --output)")
	cmd.Flags().StringVar(&o.encoding, "encoding", "", "Code page of DBF character fields, e.g. ISO-8859-1")
	return cmd
}

func runResolve(cmd *cobra.Command, g *globalOptions, o *resolveOptions, path string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	loader := geocolumn.NewLoader().WithLogger(g.logger)
	if o.encoding != "" {
		enc, err := geocolumn.LookupEncoding(o.encoding)
		if err != nil {
			return g.fail("resolve", err)
		}
		loader = loader.WithEncoding(enc)
	}

	table, err := loader.Load(ctx, path)
	if err != nil {
		return g.fail("load", err)
	}

	resolver := geocolumn.NewResolver().
		WithPositionHints(g.cfg.ResolverHints()...).
		WithKeywords(g.cfg.ResolverKeywords()).
		WithLogger(g.logger)
	res := resolver.Resolve(table)

	fmt.Fprintf(out, "table:    %s (%d fields, %d rows)\n", table.Name(), table.FieldCount(), table.RowCount())
	fmt.Fprintf(out, "strategy: %s\n", res.Strategy)
	if res.NeedsManual() {
		// not an error: the listing is the answer
		fmt.Fprintln(out, "no columns could be resolved automatically; pick them from:")
		return printListing(out, res.Listing)
	}

	projection := res.Projection
	for _, role := range model.Roles {
		fmt.Fprintf(out, "%-10s <- %s\n", role, projection.Source(role))
	}

	store, err := geocolumn.OpenStore(ctx, projection)
	if err != nil {
		return g.fail("filter", err)
	}
	defer store.Close()

	counts, err := store.CategoryCounts(ctx)
	if err != nil {
		return g.fail("filter", err)
	}
	fmt.Fprintln(out, "categories:")
	for _, c := range counts {
		fmt.Fprintf(out, "  %-24s %d\n", c.Category, c.Rows)
	}

	if o.category != "" {
		if projection, err = store.FilterByCategory(ctx, o.category); err != nil {
			return g.fail("filter", err)
		}
		fmt.Fprintf(out, "rows with category %s: %d\n", o.category, projection.Len())
	}

	if o.output == "" {
		return nil
	}
	opts, err := exportOptions(o.output, o.format, o.compression)
	if err != nil {
		return g.fail("export", err)
	}
	written, err := geocolumn.Export(ctx, projection, o.output, opts)
	if err != nil {
		return g.fail("export", err)
	}
	g.logger.Info("projection exported", "path", written, "rows", projection.Len())
	fmt.Fprintf(out, "written:  %s\n", written)
	return nil
}

func printListing(w io.Writer, listing []geocolumn.FieldSample) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tFIELD\tTYPE\tSAMPLE")
	for _, f := range listing {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.Index, f.Name, f.Type, f.Sample)
	}
	return tw.Flush()
}

// exportOptions builds export options from flags, falling back to the
// extensions of path. Export renames path when the flags disagree with it.
func exportOptions(path, format, compression string) (geocolumn.ExportOptions, error) {
	opts := geocolumn.ExportOptionsFor(path)
	if format != "" {
		f, ok := model.ParseOutputFormat(format)
		if !ok {
			return opts, fmt.Errorf("%w: output format %q", geocolumn.ErrUnsupportedFormat, format)
		}
		opts = opts.WithFormat(f)
	}
	if compression != "" {
		c, ok := model.ParseCompressionType(compression)
		if !ok {
			return opts, fmt.Errorf("%w: compression %q", geocolumn.ErrUnsupportedFormat, compression)
		}
		opts = opts.WithCompression(c)
	}
	return opts, nil
}
