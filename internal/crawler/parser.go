package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"product-scraper/internal/config"
	"product-scraper/pkg/models"
)

type Parser struct {
	Selectors config.Selectors
	Origin    *url.URL
}

func NewParser(selectors config.Selectors, origin string) (*Parser, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q is not absolute", origin)
	}
	return &Parser{Selectors: selectors, Origin: u}, nil
}

// Extract parses a listing page and returns one product per card, in document order.
func (p *Parser) Extract(r io.Reader) ([]models.Product, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	var products []models.Product
	doc.Find(p.Selectors.Card).Each(func(_ int, card *goquery.Selection) {
		product := models.Product{
			Name:  p.text(card, p.Selectors.Name),
			Price: p.text(card, p.Selectors.Price),
		}

		if href, ok := card.Find(p.Selectors.Link).First().Attr("href"); ok {
			// an empty href is kept as an empty link, not the bare origin
			var link string
			if strings.TrimSpace(href) != "" {
				link = p.resolveURL(href)
			}
			product.Link = &link
		}

		products = append(products, product)
	})

	return products, nil
}

func (p *Parser) text(card *goquery.Selection, selector string) *string {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := strippedText(sel.Get(0))
	return &text
}

// strippedText trims every text fragment under n and joins them without a separator,
// so "<h3> Foo <b>Bar</b></h3>" becomes "FooBar".
func strippedText(n *html.Node) string {
	var textBuilder strings.Builder

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			textBuilder.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)

	return textBuilder.String()
}

// Utility to resolve relative URLs (e.g. "/about" -> "https://site.com/about").
// Absolute hrefs are returned unchanged, unparsable ones are joined verbatim.
func (p *Parser) resolveURL(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return strings.TrimRight(p.Origin.String(), "/") + href
	}
	return p.Origin.ResolveReference(u).String()
}
