package harness

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lendwise/landing/models"
	"golang.org/x/net/html"
)

// AuditAssets lists the stylesheets and scripts referenced by rawHTML with
// their cache-busting "v" query parameter. Hrefs are resolved against
// pageURL; assets on another host are marked External.
func AuditAssets(rawHTML, pageURL string) ([]models.Asset, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	var assets []models.Asset
	add := func(kind, ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return
		}
		u, err := base.Parse(ref)
		if err != nil {
			return
		}
		assets = append(assets, models.Asset{
			Kind:     kind,
			Href:     u.String(),
			Version:  u.Query().Get("v"),
			External: !strings.EqualFold(u.Host, base.Host),
		})
	}

	doc.Find(`link[rel~="stylesheet"][href]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add("stylesheet", href)
	})
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		add("script", src)
	})
	return assets, nil
}
