package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule is one lookup alternative for a field: a CSS selector plus an
// optional attribute name. An empty Attr means "take the element text".
type Rule struct {
	Selector string
	Attr     string
}

// Text builds a text-extraction rule
func Text(selector string) Rule {
	return Rule{Selector: selector}
}

// Attr builds an attribute-extraction rule
func Attr(selector, attr string) Rule {
	return Rule{Selector: selector, Attr: attr}
}

// ExtractField tries each rule in order against the card and returns
// the first non-empty trimmed match. All failures yield an empty
// string; a single field never aborts a card.
func ExtractField(card *goquery.Selection, chain ...Rule) string {
	for _, rule := range chain {
		el := card.Find(rule.Selector).First()
		if el.Length() == 0 {
			continue
		}

		var value string
		if rule.Attr == "" {
			value = el.Text()
		} else {
			value, _ = el.Attr(rule.Attr)
		}

		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// ExtractImage resolves a card's image URL: the responsive srcset
// attribute wins over plain src, and when srcset lists several
// candidates the last (highest-resolution) one is chosen.
func ExtractImage(card *goquery.Selection, imgSelector string) string {
	img := card.Find(imgSelector).First()
	if img.Length() == 0 {
		return ""
	}

	if srcset, ok := img.Attr("srcset"); ok && strings.TrimSpace(srcset) != "" {
		candidates := strings.Split(srcset, ",")
		last := strings.TrimSpace(candidates[len(candidates)-1])
		// Each candidate is "url [descriptor]"; keep the URL part.
		if i := strings.IndexAny(last, " \t"); i >= 0 {
			last = last[:i]
		}
		return forceHTTPS(last)
	}

	if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return forceHTTPS(strings.TrimSpace(src))
	}
	return ""
}

// AbsoluteURL rewrites a relative href against the site origin.
// Protocol-relative URLs are pinned to HTTPS.
func AbsoluteURL(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(origin, "/") + href
	default:
		return href
	}
}

func forceHTTPS(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
