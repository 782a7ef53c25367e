package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/docsearch/pkg/highlight"
	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/urfave/cli/v3"
)

// HighlightCommand creates the highlight command
func HighlightCommand() *cli.Command {
	return &cli.Command{
		Name:      "highlight",
		Usage:     "Mark the text fragment of a link inside an HTML page",
		ArgsUsage: "[file.html]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Link carrying a #:~:text= fragment (a bare fragment works too)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "CSS selector of the content container",
				Value: highlight.DefaultRootSelector,
			},
			&cli.BoolFlag{
				Name:  "native",
				Usage: "Assume the browser handles text fragments and leave the page untouched",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			opts := highlight.Options{
				NativeSupport: c.Bool("native"),
				RootSelector:  c.String("root"),
			}
			return highlightPage(c.Args().First(), c.String("url"), opts, os.Stdout)
		},
	}
}

func highlightPage(path, link string, opts highlight.Options, w io.Writer) error {
	logger := log.ForService("highlight")

	in := io.Reader(os.Stdin)
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening page: %w", err)
		}
		defer f.Close()
		in = f
	}

	res, err := highlight.Document(in, w, link, opts)
	if err != nil {
		return fmt.Errorf("highlighting page: %w", err)
	}

	switch {
	case res.Term == "":
		logger.Debugf("no text fragment to highlight")
	case !res.Found():
		logger.Warnf("%q not found in page", res.Term)
	case !res.Marked:
		logger.Infof("%q found but could not be marked, scrolling to its element", res.Term)
	}
	return nil
}
