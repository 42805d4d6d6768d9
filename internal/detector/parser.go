package detector

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Resource is one external reference found in a page: a URL the browser
// would request while rendering the document.
type Resource struct {
	// URL is the absolute resource URL.
	URL string

	// Tag is the HTML element that referenced the resource
	// (script, img, iframe, link, source, embed).
	Tag string
}

// resourceAttr maps resource-bearing elements to the attribute that
// carries the URL. Anchors are deliberately absent: an <a href> is a
// navigation, not a resource the page loads.
var resourceAttr = map[string]string{
	"script": "src",
	"img":    "src",
	"iframe": "src",
	"link":   "href",
	"source": "src",
	"embed":  "src",
}

// ExtractResources parses HTML and returns the resources the page
// references, resolved against the page URL and deduplicated in
// document order.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because it correctly handles the malformed HTML common on the web
// and is far more maintainable than attribute-matching patterns.
func ExtractResources(pageURL string, body []byte) ([]Resource, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	resources := make([]Resource, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := resourceAttr[n.Data]; ok {
				if resolved := resolveResource(base, attrValue(n, attr)); resolved != "" && !seen[resolved] {
					seen[resolved] = true
					resources = append(resources, Resource{URL: resolved, Tag: n.Data})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return resources, nil
}

// attrValue returns the named attribute's value, or empty string.
func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// resolveResource resolves a raw attribute value to an absolute
// http(s) URL. Inline references (data:, javascript:, fragments) and
// empty values resolve to empty string.
func resolveResource(base *url.URL, raw string) string {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	return resolved.String()
}
