package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/domain"
)

const (
	kleanGreenOrigin     = "https://kleangreenindia.com"
	kleanGreenListingURL = "https://kleangreenindia.com/shop/"
)

// KleanGreenAdapter scrapes the KleanGreen WooCommerce shop
type KleanGreenAdapter struct {
	browser *Browser
	logger  *zap.Logger
}

// NewKleanGreenAdapter creates a new KleanGreen adapter
func NewKleanGreenAdapter(browser *Browser, logger *zap.Logger) *KleanGreenAdapter {
	return &KleanGreenAdapter{browser: browser, logger: logger}
}

// Name returns the adapter name
func (a *KleanGreenAdapter) Name() string {
	return "KleanGreen"
}

// Source returns the logical source identifier
func (a *KleanGreenAdapter) Source() domain.Source {
	return domain.SourceKleanGreen
}

// Scrape performs the full listing extraction
func (a *KleanGreenAdapter) Scrape(ctx context.Context) (*ScrapeResult, error) {
	result := &ScrapeResult{
		Products:  make([]domain.RawProduct, 0),
		StartTime: time.Now(),
	}

	a.logger.Info("Starting KleanGreen scrape", zap.String("url", kleanGreenListingURL))

	session, cancel := a.browser.NewSession()
	defer cancel()

	if err := session.Open(kleanGreenListingURL); err != nil {
		result.Errors = append(result.Errors, err)
		result.EndTime = time.Now()
		return result, fmt.Errorf("failed to open listing: %w", err)
	}

	if err := session.ScrollUntilStable(); err != nil {
		a.logger.Warn("Scroll did not complete, parsing current state", zap.Error(err))
	}

	html, err := session.HTML()
	if err != nil {
		result.Errors = append(result.Errors, err)
		result.EndTime = time.Now()
		return result, fmt.Errorf("failed to read listing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		result.Errors = append(result.Errors, err)
		result.EndTime = time.Now()
		return result, fmt.Errorf("failed to parse HTML: %w", err)
	}

	cards, ok := findCards(doc, "div.products.woocommerce--row", "div.product_item.col")
	if !ok {
		a.logger.Warn("Product grid not found on KleanGreen, markup may have changed")
		result.EndTime = time.Now()
		return result, nil
	}

	result.Total = cards.Length()
	a.logger.Debug("Found product cards", zap.Int("count", result.Total))

	collectCards(cards, a.parseCard, result, a.logger)

	result.EndTime = time.Now()
	a.logger.Info("KleanGreen scrape completed",
		zap.Int("total", result.Total),
		zap.Int("scraped", result.Scraped),
		zap.Duration("duration", result.Duration()),
	)

	return result, nil
}

func (a *KleanGreenAdapter) parseCard(card *goquery.Selection) domain.RawProduct {
	title, link := ExtractTitleLink(card, kleanGreenOrigin, "div.shop-product_title a")

	return domain.RawProduct{
		Title:        title,
		ProductLink:  link,
		SellingPrice: ExtractField(card, Text("div.shop-product_price ins .woocommerce-Price-amount")),
		CostPrice:    ExtractField(card, Text("div.shop-product_price del .woocommerce-Price-amount")),
		Discount:     ExtractField(card, Text("span.product-save_label")),
		Rating:       ExtractField(card, Attr("div.star-rating", "aria-label")),
		ImgURL:       ExtractImage(card, "img.attachment-woocommerce_thumbnail"),
		Seller:       kleanGreenOrigin + "/",
	}
}
