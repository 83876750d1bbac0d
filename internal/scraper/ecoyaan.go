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
	ecoyaanOrigin     = "https://ecoyaan.com"
	ecoyaanListingURL = "https://ecoyaan.com/collections/beauty-and-personal-care?CategoryId=3"
)

// EcoyaanAdapter scrapes the Ecoyaan beauty & personal care collection
type EcoyaanAdapter struct {
	browser *Browser
	logger  *zap.Logger
}

// NewEcoyaanAdapter creates a new Ecoyaan adapter
func NewEcoyaanAdapter(browser *Browser, logger *zap.Logger) *EcoyaanAdapter {
	return &EcoyaanAdapter{browser: browser, logger: logger}
}

// Name returns the adapter name
func (a *EcoyaanAdapter) Name() string {
	return "Ecoyaan"
}

// Source returns the logical source identifier
func (a *EcoyaanAdapter) Source() domain.Source {
	return domain.SourceEcoyaan
}

// Scrape performs the full listing extraction
func (a *EcoyaanAdapter) Scrape(ctx context.Context) (*ScrapeResult, error) {
	result := &ScrapeResult{
		Products:  make([]domain.RawProduct, 0),
		StartTime: time.Now(),
	}

	a.logger.Info("Starting Ecoyaan scrape", zap.String("url", ecoyaanListingURL))

	session, cancel := a.browser.NewSession()
	defer cancel()

	if err := session.Open(ecoyaanListingURL); err != nil {
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

	cards, ok := findCards(doc, "div.grid", "div.relative")
	if !ok {
		a.logger.Warn("Product grid not found on Ecoyaan, markup may have changed")
		result.EndTime = time.Now()
		return result, nil
	}

	result.Total = cards.Length()
	a.logger.Debug("Found product cards", zap.Int("count", result.Total))

	collectCards(cards, a.parseCard, result, a.logger)

	result.EndTime = time.Now()
	a.logger.Info("Ecoyaan scrape completed",
		zap.Int("total", result.Total),
		zap.Int("scraped", result.Scraped),
		zap.Duration("duration", result.Duration()),
	)

	return result, nil
}

func (a *EcoyaanAdapter) parseCard(card *goquery.Selection) domain.RawProduct {
	// Two title anchor variants exist depending on card layout.
	title, link := ExtractTitleLink(card, ecoyaanOrigin, "a.line-clamp-3", "a.line-clamp7")

	return domain.RawProduct{
		Title:        title,
		ProductLink:  link,
		Description:  ExtractField(card, Text("p.product_sub_title.product_sub_title_desk")),
		SellingPrice: ExtractField(card, Text("span.font-semibold")),
		CostPrice:    ExtractField(card, Text("span.line-through")),
		Discount:     ExtractField(card, Text("span.text-red-700")),
		Rating:       ExtractField(card, Text("div.star-container")),
		ImgURL:       ExtractImage(card, "img.w-full"),
		Seller:       ecoyaanOrigin + "/",
	}
}
