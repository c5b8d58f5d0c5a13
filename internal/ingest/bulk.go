package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

const binarySniffBytes = 512

var blankLines = regexp.MustCompile(`\n[ \t]*\n+`)

// SplitReviews splits a bulk document into individual review texts on blank
// lines. Lines within one block are joined with single spaces; empty blocks
// are dropped.
func SplitReviews(body string) []string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, block := range blankLines.Split(normalized, -1) {
		text := strings.Join(strings.Fields(block), " ")
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// FromDir walks root and extracts one review per .txt/.html/.htm file found.
// Unreadable, empty and binary-looking files are skipped with a warning so a
// single bad file does not abort a bulk import.
func FromDir(root string) ([]Result, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("input %q is a file, not a directory", root)
	}

	var results []Result
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".txt", ".html", ".htm":
		default:
			return nil
		}

		if binary, err := isLikelyBinary(path); err != nil {
			log.Warnf("skipping %q: %v", path, err)
			return nil
		} else if binary {
			log.Warnf("skipping %q: looks like a binary file", path)
			return nil
		}

		res, err := FromFile(path)
		if err != nil {
			log.Warnf("skipping %q: %v", path, err)
			return nil
		}
		if res.Body == "" {
			log.Warnf("skipping %q: no review text found", path)
			return nil
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk input directory: %w", err)
	}
	return results, nil
}

// isLikelyBinary sniffs the first bytes of a file for a NUL byte.
func isLikelyBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binarySniffBytes)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return bytes.Contains(buf[:n], []byte{0}), nil
}
