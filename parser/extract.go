package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/bookparse/models"
)

// Product table header labels used on detail pages.
const (
	labelUPC          = "UPC"
	labelPriceExclTax = "Price (excl. tax)"
	labelTax          = "Tax"
)

// ExtractBook parses a detail page into a Book. It never returns a partially
// filled record: every missing or malformed field is reported in a
// *MissingFieldsError instead.
func ExtractBook(html string) (*models.Book, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	name := strings.TrimSpace(doc.Find("div.product_main h1").First().Text())
	availability := NormalizeAvailability(doc.Find("p.instock.availability").First().Text())

	table := doc.Find("table.table-striped").First()
	if table.Length() == 0 {
		return nil, ErrNoProductTable
	}

	info := make(map[string]string)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		info[strings.TrimSpace(th.Text())] = strings.TrimSpace(td.Text())
	})

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if availability == "" {
		missing = append(missing, "availability")
	}
	upc := info[labelUPC]
	if upc == "" {
		missing = append(missing, "upc")
	}
	price, err := ParseMoney(info[labelPriceExclTax])
	if err != nil {
		missing = append(missing, "price_excl_tax")
	}
	tax, err := ParseMoney(info[labelTax])
	if err != nil {
		missing = append(missing, "tax")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	return &models.Book{
		Name:         name,
		Availability: availability,
		UPC:          upc,
		PriceExclTax: price,
		Tax:          tax,
	}, nil
}
