package scraper

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"doisporum/offerscraper/logger"
	apperr "doisporum/offerscraper/pkg/errors"
)

// DetailScraper fans out over the collected detail URLs with a bounded pool.
// Per-URL failures are recorded and skipped; the result is best effort.
type DetailScraper struct {
	fetcher     PageFetcher
	parser      DetailParser
	concurrency int
	log         *logger.Logger
}

// NewDetailScraper creates a scraper running at most concurrency fetches
// in flight.
func NewDetailScraper(fetcher PageFetcher, parser DetailParser, concurrency int) *DetailScraper {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DetailScraper{
		fetcher:     fetcher,
		parser:      parser,
		concurrency: concurrency,
		log:         logger.ForComponent("detail_scraper"),
	}
}

// Scrape fetches and parses every URL. Completion order is not guaranteed,
// but the returned slice keeps the submission order of the URLs that
// succeeded, so callers get a stable discovery-order baseline to sort from.
func (s *DetailScraper) Scrape(ctx context.Context, urls []string) []OfferItem {
	s.log.Info().
		Int("urls", len(urls)).
		Int("concurrency", s.concurrency).
		Msg("Scraping detail pages")

	// Slot per URL keeps discovery order without ordering completions
	results := make([]*OfferItem, len(urls))
	var mu sync.Mutex
	skipped := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, pageURL := range urls {
		i, pageURL := i, pageURL
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := s.scrapeOne(ctx, pageURL)

			mu.Lock()
			if item != nil {
				results[i] = item
			} else {
				skipped++
			}
			mu.Unlock()

			// Failures stay per-URL, the batch keeps going
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Msg("Scrape batch interrupted")
	}

	items := make([]OfferItem, 0, len(urls))
	for _, item := range results {
		if item != nil {
			items = append(items, *item)
		}
	}

	s.log.Info().
		Int("scraped", len(items)).
		Int("skipped", skipped).
		Msg("Detail scraping finished")

	return items
}

func (s *DetailScraper) scrapeOne(ctx context.Context, pageURL string) *OfferItem {
	html, err := s.fetcher.GetText(ctx, pageURL)
	if err != nil {
		s.log.Warn().Str("url", pageURL).Err(err).Msg("Abandoning detail page")
		return nil
	}

	item, err := s.parser.ParseDetail(html, pageURL)
	if err != nil {
		if apperr.IsType(err, apperr.ErrorTypeValidation) {
			// Not a detail page after all, drop silently
			s.log.Debug().Str("url", pageURL).Msg("URL failed detail validation")
		} else {
			s.log.Warn().Str("url", pageURL).Err(err).Msg("Failed to parse detail page")
		}
		return nil
	}

	return item
}
