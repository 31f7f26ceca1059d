// Package doctext turns text-bearing slip documents (PDF and HTML e-slips)
// into plain text for the datetime extractor, skipping the vision model
// entirely.
package doctext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	rpdf "rsc.io/pdf"
)

// FromPDF extracts text content page by page. The pdf parser panics on some
// malformed files, so the failure is converted into an error.
func FromPDF(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// FromHTML converts an HTML e-slip body to plain text. Block elements become
// line breaks so that tokens from different rows cannot run together; the
// extractor depends on line boundaries to avoid spurious matches.
func FromHTML(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return src // fall back to the raw input if parsing fails
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4").AppendHtml("\n")

	var lines []string
	for _, l := range strings.Split(doc.Text(), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}
