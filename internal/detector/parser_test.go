package detector

import (
	"testing"
)

// TestExtractResources tests resource extraction from HTML.
func TestExtractResources(t *testing.T) {
	t.Parallel()

	page := "https://example.com/articles/one"

	t.Run("extracts resource-bearing elements", func(t *testing.T) {
		t.Parallel()

		body := []byte(`<html><head>
			<link rel="stylesheet" href="/style.css">
			<script src="https://tracker.example/t.js"></script>
		</head><body>
			<img src="//cdn.example/logo.png">
			<iframe src="https://ads.example/frame"></iframe>
		</body></html>`)

		resources, err := ExtractResources(page, body)
		if err != nil {
			t.Fatalf("failed to extract resources: %v", err)
		}
		if len(resources) != 4 {
			t.Fatalf("got %d resources, expected 4", len(resources))
		}

		urls := make(map[string]string)
		for _, r := range resources {
			urls[r.URL] = r.Tag
		}
		if urls["https://example.com/style.css"] != "link" {
			t.Error("expected relative stylesheet to resolve against the page URL")
		}
		if urls["https://tracker.example/t.js"] != "script" {
			t.Error("expected absolute script URL")
		}
		if urls["https://cdn.example/logo.png"] != "img" {
			t.Error("expected scheme-relative image to inherit https")
		}
		if urls["https://ads.example/frame"] != "iframe" {
			t.Error("expected iframe source")
		}
	})

	t.Run("ignores anchors and inline references", func(t *testing.T) {
		t.Parallel()

		body := []byte(`<html><body>
			<a href="https://somewhere.example/page">link</a>
			<img src="data:image/png;base64,AAAA">
			<script src="javascript:void(0)"></script>
			<a href="#section">fragment</a>
		</body></html>`)

		resources, err := ExtractResources(page, body)
		if err != nil {
			t.Fatalf("failed to extract resources: %v", err)
		}
		if len(resources) != 0 {
			t.Errorf("got %d resources, expected 0", len(resources))
		}
	})

	t.Run("deduplicates repeated resources", func(t *testing.T) {
		t.Parallel()

		body := []byte(`<html><body>
			<script src="https://tracker.example/t.js"></script>
			<script src="https://tracker.example/t.js"></script>
		</body></html>`)

		resources, err := ExtractResources(page, body)
		if err != nil {
			t.Fatalf("failed to extract resources: %v", err)
		}
		if len(resources) != 1 {
			t.Errorf("got %d resources, expected 1", len(resources))
		}
	})

	t.Run("tolerates malformed HTML", func(t *testing.T) {
		t.Parallel()

		body := []byte(`<html><body><img src="https://cdn.example/x.png"<div><p>`)

		resources, err := ExtractResources(page, body)
		if err != nil {
			t.Fatalf("expected malformed HTML to parse, got: %v", err)
		}
		if len(resources) != 1 {
			t.Errorf("got %d resources, expected 1", len(resources))
		}
	})

	t.Run("invalid page URL returns an error", func(t *testing.T) {
		t.Parallel()

		if _, err := ExtractResources("://bad", []byte("<html></html>")); err == nil {
			t.Error("expected an error for an invalid page URL")
		}
	})
}
