// Package parsertest builds catalogue HTML fixtures for tests.
package parsertest

import (
	"fmt"
	"strings"
)

// DetailPage renders a product page for upc with the given title.
func DetailPage(upc, title string) string {
	return fmt.Sprintf(`<html><body>
<div class="product_main">
  <h1>%s</h1>
  <p class="price_color">&pound;51.77</p>
  <p class="instock availability">
      <i class="icon-ok"></i>
      In stock (22 available)
  </p>
</div>
<table class="table table-striped">
  <tr><th>UPC</th><td>%s</td></tr>
  <tr><th>Product Type</th><td>Books</td></tr>
  <tr><th>Price (excl. tax)</th><td>&pound;51.77</td></tr>
  <tr><th>Price (incl. tax)</th><td>&pound;51.77</td></tr>
  <tr><th>Tax</th><td>&pound;0.00</td></tr>
</table>
</body></html>`, title, upc)
}

// ListingPage renders a catalogue page whose entries link to
// catalogue/book-<id>/index.html. nextHref is omitted when empty.
func ListingPage(ids []int, nextHref string) string {
	var builder strings.Builder
	builder.WriteString("<html><body><section><ol class=\"row\">")
	for _, id := range ids {
		builder.WriteString("<li><article class=\"product_pod\">")
		fmt.Fprintf(&builder, "<h3><a href=\"book-%d/index.html\" title=\"Book %d\">Book %d</a></h3>", id, id, id)
		fmt.Fprintf(&builder, "<p class=\"price_color\">&pound;%0.2f</p>", float64(id))
		builder.WriteString("</article></li>")
	}
	builder.WriteString("</ol>")
	if nextHref != "" {
		fmt.Fprintf(&builder, "<ul class=\"pager\"><li class=\"next\"><a href=\"%s\">next</a></li></ul>", nextHref)
	}
	builder.WriteString("</section></body></html>")
	return builder.String()
}

// UPC returns the fixture UPC used for book id.
func UPC(id int) string {
	return fmt.Sprintf("upc%013d", id)
}
