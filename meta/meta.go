// Package meta extracts page-level metadata from rendered HTML so a
// screenshot response can carry the page's title and description
// alongside the image.
package meta

import (
	"strings"

	"github.com/AmanSainju12/pagecapture/models"
	"github.com/PuerkitoBio/goquery"
)

// Extract parses the rendered HTML and pulls out page metadata.
// Parsing failures yield an empty Metadata rather than an error:
// metadata is decoration, never worth failing a capture over.
func Extract(rawHTML, sourceURL string) models.Metadata {
	md := models.Metadata{SourceURL: sourceURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return md
	}

	md.Title = strings.TrimSpace(doc.Find("title").First().Text())
	md.Language, _ = doc.Find("html").Attr("lang")

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")

		switch {
		case name == "description" && md.Description == "":
			md.Description = strings.TrimSpace(content)
		case property == "og:title" && md.Title == "":
			md.Title = strings.TrimSpace(content)
		case property == "og:description" && md.Description == "":
			md.Description = strings.TrimSpace(content)
		case property == "og:site_name":
			md.SiteName = strings.TrimSpace(content)
		case property == "og:image":
			md.OGImage = strings.TrimSpace(content)
		}
	})

	return md
}
