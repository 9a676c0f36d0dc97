package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookparse/models"
)

// ExtractListing returns the listing entries of a catalogue page and the
// absolute URL of the next page, or "" when there is none. Entries without a
// title or a resolvable link are skipped.
func ExtractListing(html, pageURL string) ([]models.ListingEntry, string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse html: %w", err)
	}

	var entries []models.ListingEntry
	doc.Find("article.product_pod").Each(func(_ int, pod *goquery.Selection) {
		link := pod.Find("h3 a").First()
		name := strings.TrimSpace(link.AttrOr("title", ""))
		if name == "" {
			return
		}
		detail := resolve(base, link.AttrOr("href", ""))
		if detail == "" {
			return
		}
		entries = append(entries, models.ListingEntry{Name: name, DetailURL: detail})
	})

	next := resolve(base, doc.Find("li.next a").First().AttrOr("href", ""))
	return entries, next, nil
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
