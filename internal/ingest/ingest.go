// Package ingest extracts review text from local files so external sources
// (saved pages, exported documents) can be fed into the scorer. The core
// never fetches anything over the network; callers save pages first.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	log "github.com/sirupsen/logrus"
)

// Result holds the extracted review text and where it came from.
type Result struct {
	Body        string
	ContentType string // "text" or "html"
	FilePath    string
	FileSize    int64
}

// FromFile reads a .txt or .html/.htm file and returns its review text.
// HTML input keeps only paragraph text, the same extraction the original
// URL flow applied to fetched pages.
func FromFile(path string) (Result, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat input file: %w", err)
	}
	if fi.IsDir() {
		return Result{}, fmt.Errorf("input %q is a directory, not a file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Result{}, fmt.Errorf("permission denied reading %q: %w", path, err)
		}
		return Result{}, fmt.Errorf("read input file: %w", err)
	}

	res := Result{FilePath: path, FileSize: fi.Size()}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		res.ContentType = "html"
		body, err := ParagraphText(string(data))
		if err != nil {
			log.Warnf("failed to parse %q as HTML, using raw text: %v", path, err)
			body = string(data)
		}
		res.Body = CleanText(body, path)
	default:
		res.ContentType = "text"
		res.Body = CleanText(string(data), path)
	}
	return res, nil
}

// ParagraphText parses an HTML document and joins the text of its <p>
// elements, skipping script/style/nav furniture.
func ParagraphText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	skip := map[string]bool{
		"script": true, "style": true, "head": true, "nav": true,
		"footer": true, "aside": true, "form": true, "noscript": true,
	}

	var paragraphs []string
	var walk func(n *html.Node, inParagraph bool)
	var current strings.Builder
	walk = func(n *html.Node, inParagraph bool) {
		if n == nil {
			return
		}
		if n.Type == html.ElementNode && skip[n.Data] {
			return
		}
		entering := n.Type == html.ElementNode && n.Data == "p"
		if entering {
			current.Reset()
		}
		if n.Type == html.TextNode && (inParagraph || entering) {
			current.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inParagraph || entering)
		}
		if entering {
			if text := strings.Join(strings.Fields(current.String()), " "); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}
	walk(doc, false)
	return strings.Join(paragraphs, " "), nil
}
