package scraper

import (
	"context"

	"doisporum/offerscraper/logger"
	apperr "doisporum/offerscraper/pkg/errors"
)

// LinkCollector walks listing pages breadth-first and accumulates unique
// detail-page URLs up to a cap. The visited set and result set live for one
// Collect call, so collections are independent and repeatable.
type LinkCollector struct {
	fetcher PageFetcher
	parser  ListPageParser
	log     *logger.Logger
}

// NewLinkCollector creates a collector over the given fetcher and parser
func NewLinkCollector(fetcher PageFetcher, parser ListPageParser) *LinkCollector {
	return &LinkCollector{
		fetcher: fetcher,
		parser:  parser,
		log:     logger.ForComponent("collector"),
	}
}

// Collect returns up to maxItems unique detail URLs in discovery order.
// Listing pages are fetched one at a time so the breadth-first order, and
// with it the cap semantics, stay deterministic. A failing page yields zero
// links and the walk continues; the error return is non-nil only when no
// listing page could be fetched at all or the context was cancelled.
func (c *LinkCollector) Collect(ctx context.Context, seedURL string, maxItems int) ([]string, error) {
	queue := []string{seedURL}
	visited := make(map[string]bool)
	collected := make(map[string]bool)
	var links []string

	fetched := 0
	var lastErr error

	for len(queue) > 0 && len(links) < maxItems {
		if err := ctx.Err(); err != nil {
			return links, apperr.NewNetwork("collector", "collection cancelled", err)
		}

		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		c.log.Info().Str("url", current).Msg("Collecting links from listing page")

		html, err := c.fetcher.GetText(ctx, current)
		if err != nil {
			lastErr = err
			c.log.Warn().Str("url", current).Err(err).Msg("Skipping listing page")
			continue
		}
		fetched++

		detailLinks, nextPages, err := c.parser.ParseList(html, current)
		if err != nil {
			c.log.Warn().Str("url", current).Err(err).Msg("Failed to parse listing page")
			continue
		}

		for _, link := range detailLinks {
			if len(links) >= maxItems {
				break
			}
			if !collected[link] {
				collected[link] = true
				links = append(links, link)
			}
		}

		c.log.Debug().
			Int("page_links", len(detailLinks)).
			Int("total", len(links)).
			Msg("Listing page processed")

		if len(links) < maxItems {
			for _, next := range nextPages {
				if !visited[next] {
					queue = append(queue, next)
				}
			}
		}
	}

	if fetched == 0 && lastErr != nil {
		return nil, lastErr
	}

	c.log.Info().Int("count", len(links)).Msg("Collected detail links")
	return links, nil
}
