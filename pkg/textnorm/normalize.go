// Package textnorm turns raw review text into the canonical token string
// expected by the sentiment vectorizer and the content index. The same
// normalization is applied at training time, so any change here invalidates
// saved model artifacts.
package textnorm

import (
	"regexp"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	log "github.com/sirupsen/logrus"
)

var (
	urlPattern        = regexp.MustCompile(`http\S+|www\.\S+`)
	nonTokenPattern   = regexp.MustCompile(`[^a-z0-9\s']`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Options controls the optional normalization stages. The zero value
// disables both; use DefaultOptions for the scoring pipeline defaults.
type Options struct {
	RemoveStopwords bool
	Lemmatize       bool
}

// DefaultOptions matches what the sentiment model was trained with.
var DefaultOptions = Options{RemoveStopwords: true, Lemmatize: true}

var (
	lemOnce sync.Once
	lem     *golem.Lemmatizer
)

func lemmatizer() *golem.Lemmatizer {
	lemOnce.Do(func() {
		l, err := golem.New(en.New())
		if err != nil {
			// The English dictionary is compiled in, so this only fires on a
			// corrupted build. Normalization degrades to identity lemmas.
			log.Warnf("textnorm: lemmatizer init failed, lemmatization disabled: %v", err)
			return
		}
		lem = l
	})
	return lem
}

// Normalize applies the full pipeline with DefaultOptions.
func Normalize(text string) string {
	return NormalizeWith(text, DefaultOptions)
}

// NormalizeWith lowercases, strips URL-like tokens, drops every character
// that is not a lowercase letter, digit, whitespace or apostrophe, collapses
// whitespace, then optionally removes stopwords and lemmatizes. It is
// deterministic and idempotent, and never fails: the worst case for
// malformed input is an empty result.
func NormalizeWith(text string, opts Options) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = nonTokenPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if text == "" {
		return ""
	}

	tokens := strings.Split(text, " ")
	out := tokens[:0]
	for _, tok := range tokens {
		if opts.RemoveStopwords && stopwords[tok] {
			continue
		}
		if opts.Lemmatize {
			if l := lemmatizer(); l != nil {
				tok = strings.ToLower(l.Lemma(tok))
			}
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// Tokens is a convenience wrapper returning the normalized token slice.
// An empty or all-noise input yields a nil slice.
func Tokens(text string, opts Options) []string {
	norm := NormalizeWith(text, opts)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}
