package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order to find the main content of a page.
var contentSelectors = []string{"main", "article", "#content", ".content", "body"}

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td, th, dt, dd"

// extractHTML returns the title and the main content of an HTML page,
// one paragraph per block element.
func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, footer").Remove()

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		blocks := sel.Find(blockSelector)
		if blocks.Length() == 0 {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				parts = append(parts, text)
			}
			break
		}
		blocks.Each(func(_ int, b *goquery.Selection) {
			// Nested blocks such as <li><p> are read once, from the innermost element.
			if b.Find(blockSelector).Length() > 0 {
				return
			}
			if text := strings.TrimSpace(b.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		break
	}
	return strings.Join(parts, "\n\n"), nil
}
