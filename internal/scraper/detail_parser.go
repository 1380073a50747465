package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"doisporum/offerscraper/helpers"
	apperr "doisporum/offerscraper/pkg/errors"
)

// Extraction patterns for doisporum.net detail pages
var (
	detailIDRe    = regexp.MustCompile(`/details/(\d+)`)
	phoneRe       = regexp.MustCompile(`\(?(\d{2})\)?\s*(\d{4,5})-?(\d{4})`)
	cepRe         = regexp.MustCompile(`\b\d{5}-\d{3}\b`)
	addressRe     = regexp.MustCompile(`(?i)\b(Rua|Av\.?|R\.|Al\.?|Largo|Praça|Praca|Rod\.)`)
	offerPrefixRe = regexp.MustCompile(`(?i)^oferta\b`)
	offerMarkerRe = regexp.MustCompile(`(?i)2\s*por\s*1|dois\s*por\s*um|2x1`)
)

const (
	minBlockLen       = 10  // text blocks shorter than this carry no field
	minDescriptionLen = 120 // descriptions are the first long clean block
	maxAddressLen     = 150 // longer blocks are mixed content, not addresses
	maxAddresses      = 5
)

// OfferDetailParser maps one detail page to one OfferItem using
// priority-ordered extraction cascades. Pure function of its inputs.
type OfferDetailParser struct{}

// NewOfferDetailParser creates a detail parser for doisporum.net pages
func NewOfferDetailParser() *OfferDetailParser {
	return &OfferDetailParser{}
}

// ParseDetail extracts an OfferItem from a detail page. The numeric id comes
// from the URL; a URL without one fails validation and yields no item.
func (p *OfferDetailParser) ParseDetail(html, pageURL string) (*OfferItem, error) {
	m := detailIDRe.FindStringSubmatch(pageURL)
	if m == nil {
		return nil, apperr.NewValidation(pageURL, "URL does not match detail pattern")
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, apperr.NewValidation(pageURL, "URL is not absolute")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperr.NewParsing(pageURL, "failed to parse HTML", err)
	}

	blocks := textBlocks(doc)
	offer := extractOffer(blocks)

	return &OfferItem{
		Id:          m[1],
		URL:         pageURL,
		Title:       extractTitle(doc),
		Offer:       offer,
		Description: extractDescription(blocks, offer),
		Address:     extractAddress(blocks),
		Phone:       extractPhone(blocks, html),
		Website:     extractWebsite(doc, base),
		Images:      extractImages(doc, base),
	}, nil
}

// textBlocks collects normalized text blocks in document order, deduplicated.
// Paragraph-like elements come first, then the smaller inline carriers.
func textBlocks(doc *goquery.Document) []string {
	var blocks []string
	seen := make(map[string]bool)

	collect := func(i int, s *goquery.Selection) {
		text := helpers.NormalizeSpace(s.Text())
		if len(text) <= minBlockLen || seen[text] {
			return
		}
		seen[text] = true
		blocks = append(blocks, text)
	}

	doc.Find("p, li, div").Each(collect)
	doc.Find("span, h3, h4, h5, h6").Each(collect)

	return blocks
}

// extractTitle walks the title cascade: h1, h2, test-id hint, class hint,
// then the document title. First non-empty trimmed text wins.
func extractTitle(doc *goquery.Document) string {
	rules := []func() string{
		func() string { return helpers.NormalizeSpace(doc.Find("h1").First().Text()) },
		func() string { return helpers.NormalizeSpace(doc.Find("h2").First().Text()) },
		func() string { return attrHintText(doc, "data-testid", "title") },
		func() string { return attrHintText(doc, "class", "title") },
		func() string { return helpers.NormalizeSpace(doc.Find("title").First().Text()) },
	}

	for _, rule := range rules {
		if text := rule(); text != "" {
			return text
		}
	}
	return ""
}

// attrHintText returns the text of the first element whose attribute value
// contains hint, case-insensitive.
func attrHintText(doc *goquery.Document, attr, hint string) string {
	text := ""
	doc.Find("[" + attr + "]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		value, _ := s.Attr(attr)
		if !strings.Contains(strings.ToLower(value), hint) {
			return true
		}
		if t := helpers.NormalizeSpace(s.Text()); t != "" {
			text = t
			return false
		}
		return true
	})
	return text
}

// extractOffer finds the promotional text. Blocks starting with "Oferta"
// outrank blocks that merely mention a two-for-one marker; within a rank the
// shortest block is the cleanest.
func extractOffer(blocks []string) string {
	var prefixed []string
	for _, block := range blocks {
		if offerPrefixRe.MatchString(block) {
			prefixed = append(prefixed, block)
		}
	}
	if len(prefixed) > 0 {
		return helpers.Shortest(prefixed)
	}

	var marked []string
	for _, block := range blocks {
		if offerMarkerRe.MatchString(block) {
			marked = append(marked, block)
		}
	}
	return helpers.Shortest(marked)
}

// extractDescription returns the first long block that is not offer text
func extractDescription(blocks []string, offer string) string {
	for _, block := range blocks {
		if len(block) <= minDescriptionLen {
			continue
		}
		if block == offer || offerPrefixRe.MatchString(block) || offerMarkerRe.MatchString(block) {
			continue
		}
		return block
	}
	return ""
}

// extractAddress prefers blocks carrying a CEP, falling back to blocks with
// street keywords. Multiple venues are joined into one field, shortest first.
func extractAddress(blocks []string) string {
	var withCEP []string
	for _, block := range blocks {
		if len(block) < maxAddressLen && cepRe.MatchString(block) {
			withCEP = append(withCEP, block)
		}
	}
	if len(withCEP) > 0 {
		return joinAddresses(withCEP, maxAddresses)
	}

	var withKeyword []string
	for _, block := range blocks {
		if len(block) < maxAddressLen && addressRe.MatchString(block) {
			withKeyword = append(withKeyword, block)
		}
	}
	return joinAddresses(withKeyword, 3)
}

func joinAddresses(addresses []string, limit int) string {
	if len(addresses) == 0 {
		return ""
	}
	sort.SliceStable(addresses, func(i, j int) bool {
		return len(addresses[i]) < len(addresses[j])
	})
	if len(addresses) > limit {
		addresses = addresses[:limit]
	}
	return strings.Join(addresses, " | ")
}

// extractPhone looks for phone numbers near address text first, then
// anywhere on the page. Every distinct number is kept.
func extractPhone(blocks []string, html string) string {
	found := make(map[string]bool)

	for _, block := range blocks {
		if cepRe.MatchString(block) || addressRe.MatchString(block) {
			for _, m := range phoneRe.FindAllStringSubmatch(block, -1) {
				found[fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3])] = true
			}
		}
	}

	if len(found) == 0 {
		for _, m := range phoneRe.FindAllStringSubmatch(html, -1) {
			found[fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3])] = true
		}
	}

	if len(found) == 0 {
		return ""
	}

	phones := make([]string, 0, len(found))
	for phone := range found {
		phones = append(phones, phone)
	}
	sort.Strings(phones)
	return strings.Join(phones, " | ")
}

// extractWebsite returns the first anchor leading off the source domain
func extractWebsite(doc *goquery.Document, base *url.URL) string {
	website := ""
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		abs := resolveRef(base, href)
		if abs == nil || abs.Host == base.Host {
			return true
		}
		website = abs.String()
		return false
	})
	return website
}

// extractImages collects every image source as an absolute URL, preferring
// the highest-resolution srcset candidate, deduplicated in first-seen order.
func extractImages(doc *goquery.Document, base *url.URL) []string {
	var images []string
	seen := make(map[string]bool)

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src := ""
		if srcset, ok := s.Attr("srcset"); ok && strings.TrimSpace(srcset) != "" {
			src = bestSrcsetCandidate(srcset)
		}
		if src == "" {
			src, _ = s.Attr("src")
		}

		abs := resolveRef(base, src)
		if abs == nil {
			return
		}
		link := abs.String()
		if !seen[link] {
			seen[link] = true
			images = append(images, link)
		}
	})

	return images
}

// bestSrcsetCandidate picks the candidate with the largest width or density
// descriptor. Without descriptors the last candidate wins, which is how the
// site orders its variants.
func bestSrcsetCandidate(srcset string) string {
	best, bestScore := "", -1.0

	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(candidate))
		if len(fields) == 0 {
			continue
		}
		score := 0.0
		if len(fields) > 1 {
			desc := fields[1]
			if n, err := strconv.ParseFloat(strings.TrimRight(desc, "wx"), 64); err == nil {
				score = n
			}
		}
		if score >= bestScore {
			best, bestScore = fields[0], score
		}
	}

	return best
}
