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
	ecohoyOrigin     = "https://www.ecohoy.com"
	ecohoyListingURL = "https://www.ecohoy.com/personal-care.html"
)

// EcohoyAdapter scrapes the Ecohoy personal care listing
type EcohoyAdapter struct {
	browser *Browser
	logger  *zap.Logger
}

// NewEcohoyAdapter creates a new Ecohoy adapter
func NewEcohoyAdapter(browser *Browser, logger *zap.Logger) *EcohoyAdapter {
	return &EcohoyAdapter{browser: browser, logger: logger}
}

// Name returns the adapter name
func (a *EcohoyAdapter) Name() string {
	return "Ecohoy"
}

// Source returns the logical source identifier
func (a *EcohoyAdapter) Source() domain.Source {
	return domain.SourceEcohoy
}

// Scrape performs the full listing extraction
func (a *EcohoyAdapter) Scrape(ctx context.Context) (*ScrapeResult, error) {
	result := &ScrapeResult{
		Products:  make([]domain.RawProduct, 0),
		StartTime: time.Now(),
	}

	a.logger.Info("Starting Ecohoy scrape", zap.String("url", ecohoyListingURL))

	session, cancel := a.browser.NewSession()
	defer cancel()

	if err := session.Open(ecohoyListingURL); err != nil {
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

	cards, ok := findCards(doc, "ul.products-grid", "li")
	if !ok {
		a.logger.Warn("Product grid not found on Ecohoy, markup may have changed")
		result.EndTime = time.Now()
		return result, nil
	}

	result.Total = cards.Length()
	a.logger.Debug("Found product cards", zap.Int("count", result.Total))

	collectCards(cards, a.parseCard, result, a.logger)

	result.EndTime = time.Now()
	a.logger.Info("Ecohoy scrape completed",
		zap.Int("total", result.Total),
		zap.Int("scraped", result.Scraped),
		zap.Duration("duration", result.Duration()),
	)

	return result, nil
}

func (a *EcohoyAdapter) parseCard(card *goquery.Selection) domain.RawProduct {
	title, link := ExtractTitleLink(card, ecohoyOrigin, "p.product-name.pro-name a")

	return domain.RawProduct{
		Title:       title,
		ProductLink: link,
		Description: ExtractField(card, Text("p.product_sub_title.product_sub_title_desk")),
		// Sale price when discounted, regular price otherwise.
		SellingPrice: ExtractField(card,
			Text("p.special-price span.price"),
			Text("span.regular-price span"),
		),
		CostPrice: ExtractField(card, Text("p.old-price span.price")),
		Discount:  ExtractField(card, Text("div.spacial-offer")),
		Rating:    ExtractField(card, Text("div.star-container")),
		ImgURL:    ExtractImage(card, "img.lazy"),
		Seller:    ecohoyOrigin + "/",
	}
}
