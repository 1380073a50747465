package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"doisporum/offerscraper/helpers"
	apperr "doisporum/offerscraper/pkg/errors"
)

// ListParser extracts detail links and pagination links from listing pages.
// The heuristic knobs are exported so a caller can extend them for another
// page family without touching the tier logic.
type ListParser struct {
	// DetailPath matches the URL path of a detail page
	DetailPath *regexp.Regexp

	// NextTexts are anchor texts that indicate a "next page" link
	NextTexts []string

	// PageParams are query parameter names that carry a page number
	PageParams []string

	// Containers are selectors for generic pagination blocks, the last tier
	Containers []string
}

// NewListParser creates a parser tuned for doisporum.net listing pages
func NewListParser() *ListParser {
	return &ListParser{
		DetailPath: regexp.MustCompile(`^/home/details/\d+/?$`),
		NextTexts:  []string{"próxima", "próximo", "proxima", "proximo", "seguinte", "next", "mais", ">>", "»"},
		PageParams: []string{"page", "pagina", "p"},
		Containers: []string{".pagination a[href]", "ul.pager a[href]", "nav.pagination a[href]"},
	}
}

// ParseList extracts detail-page links and next-page links from a listing
// page. Relative targets are resolved against pageURL; pagination candidates
// never leave the page's own domain. Pure function of its inputs.
func (p *ListParser) ParseList(html, pageURL string) ([]string, []string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, nil, apperr.NewParsing("list", "page URL is not absolute", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, apperr.NewParsing("list", "failed to parse HTML", err)
	}

	return p.detailLinks(doc, base), p.paginationLinks(doc, base), nil
}

// detailLinks returns absolute detail URLs in document order, deduplicated
func (p *ListParser) detailLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := resolveRef(base, href)
		if abs == nil {
			return
		}
		if !p.DetailPath.MatchString(abs.Path) {
			return
		}
		link := abs.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links
}

// paginationLinks applies the tiered next-page heuristics. The first tier
// that yields any candidate wins for this page.
func (p *ListParser) paginationLinks(doc *goquery.Document, base *url.URL) []string {
	tiers := [](func(*goquery.Document, *url.URL) []*url.URL){
		p.explicitNextLinks,
		p.incrementedPageLinks,
		p.containerLinks,
	}

	for _, tier := range tiers {
		if links := p.finalize(tier(doc, base), base); len(links) > 0 {
			return links
		}
	}
	return nil
}

// explicitNextLinks is tier 1: rel="next", next-like anchor texts, and the
// page number one past a detected current-page indicator.
func (p *ListParser) explicitNextLinks(doc *goquery.Document, base *url.URL) []*url.URL {
	var candidates []*url.URL

	doc.Find(`a[rel="next"], link[rel="next"]`).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		candidates = append(candidates, resolveRef(base, href))
	})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		text := strings.ToLower(helpers.NormalizeSpace(s.Text()))
		label, _ := s.Attr("aria-label")
		label = strings.ToLower(helpers.NormalizeSpace(label))
		for _, next := range p.NextTexts {
			if (text != "" && strings.Contains(text, next)) || (label != "" && strings.Contains(label, next)) {
				href, _ := s.Attr("href")
				candidates = append(candidates, resolveRef(base, href))
				break
			}
		}
	})

	if current, ok := currentPageNumber(doc); ok {
		want := strconv.Itoa(current + 1)
		doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
			if helpers.NormalizeSpace(s.Text()) == want {
				href, _ := s.Attr("href")
				candidates = append(candidates, resolveRef(base, href))
			}
		})
	}

	return candidates
}

// incrementedPageLinks is tier 2: anchors whose target differs from the
// current page only by a page number bumped by exactly one.
func (p *ListParser) incrementedPageLinks(doc *goquery.Document, base *url.URL) []*url.URL {
	var candidates []*url.URL
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := resolveRef(base, href)
		if abs != nil && p.incrementedByOne(base, abs) {
			candidates = append(candidates, abs)
		}
	})
	return candidates
}

// containerLinks is tier 3: anything inside a generic pagination container
func (p *ListParser) containerLinks(doc *goquery.Document, base *url.URL) []*url.URL {
	var candidates []*url.URL
	for _, selector := range p.Containers {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			candidates = append(candidates, resolveRef(base, href))
		})
	}
	return candidates
}

// finalize drops nil, external-domain, and self candidates, deduplicating
// while preserving order.
func (p *ListParser) finalize(candidates []*url.URL, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)
	self := base.String()

	for _, cand := range candidates {
		if cand == nil || cand.Host != base.Host {
			continue
		}
		link := cand.String()
		if link == self || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// incrementedByOne reports whether cand is cur with a single page number
// bumped by exactly one, either in a page query parameter or in a numeric
// path segment. A missing page parameter counts as page 1.
func (p *ListParser) incrementedByOne(cur, cand *url.URL) bool {
	if cand.Host != cur.Host {
		return false
	}

	curQuery, candQuery := cur.Query(), cand.Query()

	if cur.Path == cand.Path {
		bumped := false
		for _, name := range p.PageParams {
			curVal, candVal := curQuery.Get(name), candQuery.Get(name)
			if curVal == candVal {
				continue
			}
			curPage := 1
			if curVal != "" {
				n, err := strconv.Atoi(curVal)
				if err != nil {
					return false
				}
				curPage = n
			}
			candPage, err := strconv.Atoi(candVal)
			if err != nil || candPage != curPage+1 || bumped {
				return false
			}
			bumped = true
		}
		if !bumped {
			return false
		}
		// every non-page parameter must be untouched
		for _, name := range p.PageParams {
			curQuery.Del(name)
			candQuery.Del(name)
		}
		return curQuery.Encode() == candQuery.Encode()
	}

	// path segment case: queries must be identical
	if curQuery.Encode() != candQuery.Encode() {
		return false
	}
	curSegs := strings.Split(strings.Trim(cur.Path, "/"), "/")
	candSegs := strings.Split(strings.Trim(cand.Path, "/"), "/")
	if len(curSegs) != len(candSegs) {
		return false
	}
	bumped := false
	for i := range curSegs {
		if curSegs[i] == candSegs[i] {
			continue
		}
		curNum, err1 := strconv.Atoi(curSegs[i])
		candNum, err2 := strconv.Atoi(candSegs[i])
		if err1 != nil || err2 != nil || candNum != curNum+1 || bumped {
			return false
		}
		bumped = true
	}
	return bumped
}

// currentPageNumber looks for a highlighted page indicator inside a
// pagination block and returns its numeric value.
func currentPageNumber(doc *goquery.Document) (int, bool) {
	page, found := 0, false
	doc.Find(".active, .current, [aria-current]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		n, err := strconv.Atoi(helpers.NormalizeSpace(s.Text()))
		if err != nil {
			return true
		}
		page, found = n, true
		return false
	})
	return page, found
}

// resolveRef resolves href against base and keeps only http(s) results
func resolveRef(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil
	}
	abs.Fragment = ""
	return abs
}
