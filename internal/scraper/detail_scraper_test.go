package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func detailPage(title string) string {
	return `<html><body><h1>` + title + `</h1></body></html>`
}

func TestScrapeKeepsSubmissionOrder(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		"https://doisporum.net/home/details/3": detailPage("Três"),
		"https://doisporum.net/home/details/1": detailPage("Um"),
		"https://doisporum.net/home/details/2": detailPage("Dois"),
	})

	scraper := NewDetailScraper(fetcher, NewOfferDetailParser(), 3)
	items := scraper.Scrape(context.Background(), detailURLs("3", "1", "2"))

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Id)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestScrapeSkipsFailedPages(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		"https://doisporum.net/home/details/1": detailPage("Um"),
		"https://doisporum.net/home/details/3": detailPage("Três"),
	})

	scraper := NewDetailScraper(fetcher, NewOfferDetailParser(), 2)
	items := scraper.Scrape(context.Background(), detailURLs("1", "2", "3"))

	assert.Len(t, items, 2)
	assert.Equal(t, "1", items[0].Id)
	assert.Equal(t, "3", items[1].Id)
}

func TestScrapeDropsNonDetailURLs(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		"https://doisporum.net/home/details/1": detailPage("Um"),
		"https://doisporum.net/sobre":          detailPage("Sobre nós"),
	})

	scraper := NewDetailScraper(fetcher, NewOfferDetailParser(), 2)
	items := scraper.Scrape(context.Background(), []string{
		"https://doisporum.net/home/details/1",
		"https://doisporum.net/sobre",
	})

	assert.Len(t, items, 1)
	assert.Equal(t, "1", items[0].Id)
}

func TestScrapeSequentialWithSingleWorker(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		"https://doisporum.net/home/details/1": detailPage("Um"),
		"https://doisporum.net/home/details/2": detailPage("Dois"),
	})

	scraper := NewDetailScraper(fetcher, NewOfferDetailParser(), 1)
	items := scraper.Scrape(context.Background(), detailURLs("1", "2"))

	assert.Len(t, items, 2)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestScrapeEmptyInput(t *testing.T) {
	scraper := NewDetailScraper(newFakeFetcher(nil), NewOfferDetailParser(), 4)
	items := scraper.Scrape(context.Background(), nil)
	assert.Empty(t, items)
}
