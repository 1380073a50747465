package scraper

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"doisporum/offerscraper/config"
	"doisporum/offerscraper/logger"
	apperr "doisporum/offerscraper/pkg/errors"
	"doisporum/offerscraper/services/cache"
	"doisporum/offerscraper/services/publisher"
)

// Coordinator sequences the pipeline: collect detail URLs, scrape them,
// sort the results and hand them to the repository. It owns the shared
// HTTP client for the lifetime of one run.
type Coordinator struct {
	cfg       config.Config
	client    *HTTPClient
	collector *LinkCollector
	scraper   *DetailScraper
	repo      OfferRepository
	pub       publisher.Publisher
	log       *logger.Logger
}

// NewCoordinator wires the pipeline. cacheSvc and pub may be nil; the
// repository is required.
func NewCoordinator(cfg config.Config, cacheSvc cache.CacheService, repo OfferRepository, pub publisher.Publisher) *Coordinator {
	client := NewHTTPClient(ClientConfig{
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
		BlockTime: cfg.BlockTime,
	}, cacheSvc)

	return &Coordinator{
		cfg:       cfg,
		client:    client,
		collector: NewLinkCollector(client, NewListParser()),
		scraper:   NewDetailScraper(client, NewOfferDetailParser(), cfg.MaxConcurrency),
		repo:      repo,
		pub:       pub,
		log:       logger.ForComponent("coordinator"),
	}
}

// Run executes the whole pipeline once. The shared client is released when
// both phases are done, whatever the outcome.
func (co *Coordinator) Run(ctx context.Context) error {
	defer co.client.Close()

	co.log.Info().
		Str("seed_url", co.cfg.SeedURL).
		Int("max_items", co.cfg.MaxItems).
		Msg("Starting scrape")

	urls, err := co.collector.Collect(ctx, co.cfg.SeedURL, co.cfg.MaxItems)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return apperr.NewParsing("coordinator", "no detail URLs collected", nil)
	}

	items := co.scraper.Scrape(ctx, urls)
	if len(items) == 0 {
		return apperr.NewParsing("coordinator", "no offers scraped", nil)
	}

	SortOffers(items)

	if err := co.repo.Save(items, co.cfg.CSVPath, co.cfg.JSONLPath); err != nil {
		return err
	}

	co.publish(items)

	co.log.Info().
		Int("offers", len(items)).
		Str("csv", co.cfg.CSVPath).
		Str("jsonl", co.cfg.JSONLPath).
		Msg("Scrape completed")

	return nil
}

// publish pushes the final offer set downstream. Publishing is best effort
// and never fails the run.
func (co *Coordinator) publish(items []OfferItem) {
	if co.pub == nil {
		return
	}

	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			co.log.Error().Str("id", item.Id).Err(err).Msg("Failed to marshal offer")
			continue
		}
		if err := co.pub.Publish(item.Id, payload); err != nil {
			co.log.Error().Str("id", item.Id).Err(err).Msg("Failed to publish offer")
		}
	}

	if err := co.pub.TrimStream(); err != nil {
		co.log.Error().Err(err).Msg("Failed to trim offer stream")
	}
}

// SortOffers orders items by numeric id ascending. Items whose id is not
// numeric keep their discovery order after the numeric ones. The sort is
// stable so equal keys never swap.
func SortOffers(items []OfferItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, errA := strconv.Atoi(items[i].Id)
		b, errB := strconv.Atoi(items[j].Id)
		if errA != nil && errB != nil {
			return false
		}
		if errA != nil {
			return false
		}
		if errB != nil {
			return true
		}
		return a < b
	})
}
