package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/web-scraper/internal/build"
	"github.com/rohmanhakim/web-scraper/internal/extractor"
	"github.com/rohmanhakim/web-scraper/internal/scrape"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
	"github.com/rohmanhakim/web-scraper/pkg/retry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// fetchAll runs fn for every URL, at most Concurrency at a time, each
// under the retry policy. Results keep the order of urls; one failure
// does not stop the others. Cancelling ctx skips the URLs not yet started
// and returns the context error.
func fetchAll[T any](
	ctx context.Context,
	a *app,
	urls []string,
	fn func(ctx context.Context, url string) (T, failure.ClassifiedError),
) ([]T, []error, error) {
	results := make([]T, len(urls))
	errs := make([]error, len(urls))

	var group errgroup.Group
	group.SetLimit(a.cfg.Concurrency())
	for i, url := range urls {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			result := retry.Retry(ctx, a.retryParam(), func(ctx context.Context) (T, failure.ClassifiedError) {
				return fn(ctx, url)
			})
			if result.IsFailure() {
				errs[i] = result.Err()
				a.logger.WithField("url", url).WithField("attempts", result.Attempts()).Error(result.Err().Error())
				return nil
			}
			results[i] = result.Value()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}

func writeAll[T any](out io.Writer, results []T, errs []error, render func(T) string) error {
	var failed []error
	for i, result := range results {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		if _, err := io.WriteString(out, render(result)); err != nil {
			return err
		}
	}
	return errors.Join(failed...)
}

func newGetCommand() *cobra.Command {
	var method string
	getCmd := &cobra.Command{
		Use:   "get URL...",
		Short: "Print response bodies, downloading only what is not cached",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp("get")
			if err != nil {
				return err
			}
			results, errs, err := fetchAll(cmd.Context(), a, args, func(ctx context.Context, url string) ([]byte, failure.ClassifiedError) {
				return a.fetcher.GetWithMethod(ctx, method, url)
			})
			if err != nil {
				return err
			}
			return writeAll(cmd.OutOrStdout(), results, errs, func(body []byte) string {
				return string(body)
			})
		},
	}
	getCmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	return getCmd
}

func newTextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "text URL...",
		Short: "Print response bodies as UTF-8 text, one per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp("text")
			if err != nil {
				return err
			}
			results, errs, err := fetchAll(cmd.Context(), a, args, a.fetcher.GetText)
			if err != nil {
				return err
			}
			return writeAll(cmd.OutOrStdout(), results, errs, func(text string) string {
				return strings.TrimRight(text, "\n") + "\n"
			})
		},
	}
}

func newPathCommand() *cobra.Command {
	var method string
	pathCmd := &cobra.Command{
		Use:   "path URL",
		Short: "Print where the cache entry for URL lives in every root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp("path")
			if err != nil {
				return err
			}
			key := a.fetcher.CacheKey(method, args[0])
			for _, root := range a.webCache.Roots() {
				path, pathErr := a.webCache.Path(root, key)
				if pathErr != nil {
					return pathErr
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	pathCmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	return pathCmd
}

func newClearCommand() *cobra.Command {
	var method string
	clearCmd := &cobra.Command{
		Use:   "clear URL...",
		Short: "Remove cache entries from every root",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp("clear")
			if err != nil {
				return err
			}
			var failed []error
			for _, url := range args {
				if clearErr := a.webCache.Clear(a.fetcher.CacheKey(method, url)); clearErr != nil {
					failed = append(failed, clearErr)
				}
			}
			return errors.Join(failed...)
		},
	}
	clearCmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	return clearCmd
}

type scrapeOptions struct {
	selector  string
	attribute string
	html      bool
	markdown  bool
	only      bool
	content   []string
}

// parser picks what to print for each match of the selector, or the
// main content of the page when no selector is given.
func (o scrapeOptions) parser() (extractor.Parser[[]string], error) {
	if o.selector == "" {
		markdownParser := extractor.NewMarkdownParser(o.content...)
		return extractor.ParserFunc[[]string](func(webpage extractor.Webpage, doc *goquery.Document) ([]string, error) {
			markdown, err := markdownParser.Parse(webpage, doc)
			if err != nil {
				return nil, err
			}
			return []string{markdown}, nil
		}), nil
	}

	var render func(s scrape.Scraper) (string, error)
	switch {
	case o.attribute != "" && (o.html || o.markdown), o.html && o.markdown:
		return nil, errors.New("--attr, --html and --markdown are mutually exclusive")
	case o.attribute != "":
		render = func(s scrape.Scraper) (string, error) {
			value, ok := s.Attr(o.attribute)
			if !ok {
				return "", &scrape.ScrapeError{
					Cause:     scrape.ErrCauseExpectedOneGotNone,
					Selector:  o.selector,
					Attribute: o.attribute,
				}
			}
			return value, nil
		}
	case o.html:
		render = scrape.Scraper.HTML
	case o.markdown:
		render = scrape.Scraper.Markdown
	default:
		render = func(s scrape.Scraper) (string, error) {
			return strings.TrimSpace(s.Text()), nil
		}
	}

	return extractor.ScrapeParser[[]string](func(s scrape.Scraper) ([]string, error) {
		if o.only {
			value, err := scrape.Only(s, o.selector, render)
			if err != nil {
				return nil, err
			}
			return []string{value}, nil
		}
		return scrape.All(s, o.selector, render)
	}), nil
}

func newScrapeCommand() *cobra.Command {
	var opts scrapeOptions
	scrapeCmd := &cobra.Command{
		Use:   "scrape URL",
		Short: "Print the matches of a CSS selector, or the page's main content as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := opts.parser()
			if err != nil {
				return err
			}
			a, err := newApp("scrape")
			if err != nil {
				return err
			}
			ext, err := a.newExtractor(parser)
			if err != nil {
				return err
			}
			result := retry.Retry(cmd.Context(), a.retryParam(), func(ctx context.Context) (extractor.Extract[[]string], failure.ClassifiedError) {
				extract, err := ext.Extract(ctx, args[0])
				if err != nil {
					return extract, classify(err)
				}
				return extract, nil
			})
			if result.IsFailure() {
				return result.Err()
			}
			a.logger.WithField("page", result.Value().Webpage.String()).Debug("scraped")
			for _, line := range result.Value().Data {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	flags := scrapeCmd.Flags()
	flags.StringVarP(&opts.selector, "select", "s", "", "CSS selector; empty prints the main content as Markdown")
	flags.StringVarP(&opts.attribute, "attr", "a", "", "print this attribute of each match")
	flags.BoolVar(&opts.html, "html", false, "print the inner HTML of each match")
	flags.BoolVar(&opts.markdown, "markdown", false, "print each match as Markdown")
	flags.BoolVar(&opts.only, "only", false, "require exactly one match")
	flags.StringArrayVar(&opts.content, "content-selector", []string{}, "extra main content container to try (can be repeated)")
	return scrapeCmd
}

// newExtractor reads through the web cache, adding the snapshot directory
// in front when one is configured.
func (a *app) newExtractor(parser extractor.Parser[[]string]) (extractor.Extractor[[]string], error) {
	fetcherExtractor, err := extractor.NewFetcherExtractor(a.fetcher, parser, a.sink)
	if err != nil {
		return nil, err
	}
	if a.cfg.ExtractCacheDir() == "" {
		return fetcherExtractor, nil
	}
	cacheExtractor, err := extractor.NewCacheExtractor[[]string](
		a.cfg.ExtractCacheDir(),
		fetcherExtractor,
		parser,
		a.sink,
		extractor.WithDigest(a.cfg.DigestAlgo()),
	)
	if err != nil {
		return nil, err
	}
	return cacheExtractor, nil
}

// classify keeps classified errors as they are and treats anything else
// as fatal.
func classify(err error) failure.ClassifiedError {
	var classified failure.ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	return &extractor.ExtractionError{Message: err.Error(), Cause: extractor.ErrCauseExecution, Err: err}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "web-scraper %s (built %s)\n", build.FullVersion(), build.BuildTime)
		},
	}
}
