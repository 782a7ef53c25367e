package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/fragment"
	"github.com/rubiojr/docsearch/pkg/search"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the document store",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page number",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results per page (defaults to page_size)",
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Only return documents of this type (repeatable)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Ordering: date or title",
				Value: "date",
			},
			&cli.StringFlag{
				Name:  "order",
				Usage: "Sort direction: asc or desc",
				Value: "desc",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include drafts and unlisted documents",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			key, ok := search.ParseSortKey(c.String("sort"))
			if !ok {
				return fmt.Errorf("invalid sort key %q (use date or title)", c.String("sort"))
			}
			dir, ok := search.ParseDirection(c.String("order"))
			if !ok {
				return fmt.Errorf("invalid sort direction %q (use asc or desc)", c.String("order"))
			}
			opts := searchOptions{
				Query:   strings.Join(c.Args().Slice(), " "),
				Page:    c.Int("page"),
				Limit:   c.Int("limit"),
				Types:   c.StringSlice("type"),
				SortKey: key,
				Dir:     dir,
				All:     c.Bool("all"),
				JSON:    c.Bool("json"),
			}
			return searchDocuments(ctx, c.String("config"), opts, os.Stdout)
		},
	}
}

type searchOptions struct {
	Query   string
	Page    int
	Limit   int
	Types   []string
	SortKey search.SortKey
	Dir     search.Direction
	All     bool
	JSON    bool
}

// searchDocuments runs a one-shot query against the local store
func searchDocuments(ctx context.Context, configPath string, opts searchOptions, w io.Writer) error {
	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if opts.Limit <= 0 {
		opts.Limit = cfg.Search.PageSize
	}

	return runSearch(ctx, search.NewEngine(store), newResolver(cfg), cfg.Search.ExcerptLength, opts, w)
}

func runSearch(ctx context.Context, engine *search.Engine, resolver content.URLResolver, excerptLen int, opts searchOptions, w io.Writer) error {
	q := search.NewQuery().
		OfType(opts.Types...).
		OrderBy(opts.SortKey, opts.Dir).
		PerPage(opts.Limit).
		Page(opts.Page).
		Search(opts.Query)
	if !opts.All {
		q = q.Published()
	}

	results, err := engine.Get(ctx, q)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	projector := search.NewProjector(resolver, excerptLen)
	lines := make([]resultLine, 0, results.Len())
	for _, hit := range results.Hits {
		item, ok := projector.Item(hit.Document)
		if !ok {
			// Keep unroutable documents visible on the command line.
			item = search.ResultItem{
				Title:   hit.Document.Title,
				Type:    search.TypeLabel(hit.Document.Type),
				Excerpt: content.ExcerptOf(hit.Document, excerptLen),
			}
		}
		line := resultLine{ResultItem: item, Link: fragment.WithText(item.URL, opts.Query)}
		if hit.Document.PublishedAt != nil {
			line.Date = hit.Document.PublishedAt.Format("2006-01-02")
		}
		if line.Link == "" {
			line.Link = "(no route for " + hit.Document.Type + "/" + hit.Document.Slug + ")"
		}
		lines = append(lines, line)
	}

	if opts.JSON {
		items := make([]search.ResultItem, len(lines))
		for i, l := range lines {
			items[i] = l.ResultItem
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"query":       opts.Query,
			"items":       items,
			"count":       len(items),
			"total":       results.Total,
			"page":        results.Page,
			"total_pages": results.TotalPages,
		})
	}

	if len(lines) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No results found"))
		return nil
	}

	formatResults(w, lines, -1)
	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d results, page %d of %d", results.Total, results.Page, results.TotalPages)
	fmt.Fprintln(w, summaryStyle.Render(summary))
	return nil
}
