package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies the storefront a product was scraped from
type Source string

const (
	SourceEcoConscious Source = "ecoconscious_personalcare"
	SourceEcohoy       Source = "ecohoy_personalcare"
	SourceEcoyaan      Source = "ecoyaan_personalcare"
	SourceKleanGreen   Source = "kleangreen_shop"
)

// RawProduct is an adapter's unvalidated extraction result for one
// listing card. All fields except Seller are best-effort: an empty
// string means the field could not be located on the card. ProductLink,
// when present, is always an absolute URL.
type RawProduct struct {
	Title        string
	ProductLink  string
	SellingPrice string
	CostPrice    string
	Discount     string
	Rating       string
	Description  string
	ImgURL       string
	Brand        string
	Category     string
	SubCategory  string
	Seller       string
}

// Product is the persisted catalog entity. ProductLink is globally
// unique and acts as the reconciliation key; ScrapedAt marks first-seen
// time and is never touched on update.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	ProductLink  string    `json:"product_link"`
	SellingPrice string    `json:"selling_price,omitempty"`
	CostPrice    string    `json:"cost_price,omitempty"`
	Discount     string    `json:"discount,omitempty"`
	Rating       string    `json:"rating,omitempty"`
	Description  string    `json:"description,omitempty"`
	ImgURL       string    `json:"img_url,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Category     string    `json:"category,omitempty"`
	SubCategory  string    `json:"sub_category,omitempty"`
	Seller       string    `json:"seller,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// Classification is the parsed reply of the external text classifier
// for one product title. Raw keeps the model's verbatim output for
// audit.
type Classification struct {
	Category    string
	SubCategory string
	Raw         string
}
