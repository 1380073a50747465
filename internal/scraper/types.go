package scraper

import "context"

// OfferItem represents one extracted offer.
// Extraction is heuristic, so every field except Id and URL may be missing.
type OfferItem struct {
	Id          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Offer       string   `json:"offer,omitempty"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Website     string   `json:"website,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// PageFetcher fetches a URL and returns its body as UTF-8 text
type PageFetcher interface {
	GetText(ctx context.Context, url string) (string, error)
}

// ListPageParser extracts detail-page links and pagination links from a
// listing page. Both result slices contain absolute URLs in document order.
type ListPageParser interface {
	ParseList(html, pageURL string) (detailLinks []string, nextPages []string, err error)
}

// DetailParser maps a detail page to an OfferItem.
// Pages whose URL does not carry a numeric detail id yield a validation error.
type DetailParser interface {
	ParseDetail(html, pageURL string) (*OfferItem, error)
}

// OfferRepository persists the finalized, sorted offer set
type OfferRepository interface {
	Save(items []OfferItem, csvPath, jsonlPath string) error
}
