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
	ecoConsciousOrigin = "https://ecoconscious.in"
	// The storefront serves its catalog from the misspelled domain.
	ecoConsciousListingURL = "https://ecoconsious.in/collections/personal-care"
)

// EcoConsciousAdapter scrapes the EcoConscious personal care collection
type EcoConsciousAdapter struct {
	browser *Browser
	logger  *zap.Logger
}

// NewEcoConsciousAdapter creates a new EcoConscious adapter
func NewEcoConsciousAdapter(browser *Browser, logger *zap.Logger) *EcoConsciousAdapter {
	return &EcoConsciousAdapter{browser: browser, logger: logger}
}

// Name returns the adapter name
func (a *EcoConsciousAdapter) Name() string {
	return "EcoConscious"
}

// Source returns the logical source identifier
func (a *EcoConsciousAdapter) Source() domain.Source {
	return domain.SourceEcoConscious
}

// Scrape performs the full listing extraction
func (a *EcoConsciousAdapter) Scrape(ctx context.Context) (*ScrapeResult, error) {
	result := &ScrapeResult{
		Products:  make([]domain.RawProduct, 0),
		StartTime: time.Now(),
	}

	a.logger.Info("Starting EcoConscious scrape", zap.String("url", ecoConsciousListingURL))

	session, cancel := a.browser.NewSession()
	defer cancel()

	if err := session.Open(ecoConsciousListingURL); err != nil {
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

	cards, ok := findCards(doc, "#product-grid", "li")
	if !ok {
		a.logger.Warn("Product grid not found on EcoConscious, markup may have changed")
		result.EndTime = time.Now()
		return result, nil
	}

	result.Total = cards.Length()
	a.logger.Debug("Found product cards", zap.Int("count", result.Total))

	collectCards(cards, a.parseCard, result, a.logger)

	result.EndTime = time.Now()
	a.logger.Info("EcoConscious scrape completed",
		zap.Int("total", result.Total),
		zap.Int("scraped", result.Scraped),
		zap.Duration("duration", result.Duration()),
	)

	return result, nil
}

func (a *EcoConsciousAdapter) parseCard(card *goquery.Selection) domain.RawProduct {
	title, link := ExtractTitleLink(card, ecoConsciousOrigin,
		"a.full-unstyled-link.custom-card-title.custom-card-title-desk")

	return domain.RawProduct{
		Title:        title,
		ProductLink:  link,
		Description:  ExtractField(card, Text("p.product_sub_title.product_sub_title_desk")),
		SellingPrice: ExtractField(card, Text("span.amw-price-container")),
		CostPrice:    ExtractField(card, Text("span.amw-com-price-container")),
		Discount:     ExtractField(card, Text("span.discount_container_comb_card")),
		Rating:       ExtractField(card, Text("div.star-container")),
		ImgURL:       ExtractImage(card, "img.motion-reduce"),
		Seller:       ecoConsciousOrigin + "/",
	}
}
