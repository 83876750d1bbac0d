package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/domain"
)

// findCards locates the listing container and returns the item cards
// under it. A missing container means "zero products this run", not a
// fatal error; the caller logs it as a maintenance condition.
func findCards(doc *goquery.Document, containerSel, itemSel string) (*goquery.Selection, bool) {
	container := doc.Find(containerSel).First()
	if container.Length() == 0 {
		return nil, false
	}
	return container.Find(itemSel), true
}

// collectCards runs parse over every card and appends the results.
// A failure on one card is recorded and skipped so a single malformed
// card cannot abort the batch.
func collectCards(cards *goquery.Selection, parse func(*goquery.Selection) domain.RawProduct, result *ScrapeResult, logger *zap.Logger) {
	cards.Each(func(i int, card *goquery.Selection) {
		product, err := safeParse(card, parse)
		if err != nil {
			logger.Debug("Failed to parse product card", zap.Int("index", i), zap.Error(err))
			result.Errors = append(result.Errors, err)
			return
		}
		result.Products = append(result.Products, product)
		result.Scraped++
	})
}

// safeParse isolates one card's parse so an unexpected panic skips
// just that card.
func safeParse(card *goquery.Selection, parse func(*goquery.Selection) domain.RawProduct) (product domain.RawProduct, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("card parse failed: %v", r)
		}
	}()
	return parse(card), nil
}

// ExtractTitleLink returns the text and absolutized href of the first
// anchor matched by the chain. Both may be empty; filtering happens
// downstream at upsert time.
func ExtractTitleLink(card *goquery.Selection, origin string, selectors ...string) (title, link string) {
	for _, sel := range selectors {
		el := card.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		title = strings.TrimSpace(el.Text())
		if href, ok := el.Attr("href"); ok {
			link = AbsoluteURL(origin, href)
		}
		if title != "" || link != "" {
			return title, link
		}
	}
	return "", ""
}
