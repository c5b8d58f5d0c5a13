package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Smart quotes and other Windows-1252 strays that show up in scraped and
// exported review text.
var charReplacements = map[string]string{
	"\u2018": "'", "\u2019": "'", "\u201C": "\"", "\u201D": "\"",
	"\u2013": "-", "\u2014": "--", "\u2026": "...", "\u00a0": " ",
	"\u0091": "'", "\u0092": "'", "\u0093": "\"", "\u0094": "\"",
	"\u0096": "-", "\u0097": "--",
}

// CleanText strips a UTF-8 BOM, repairs invalid UTF-8 and replaces common
// typographic strays so downstream normalization sees plain text. src is
// only used for log context.
func CleanText(text, src string) string {
	b := bytes.TrimPrefix([]byte(text), utf8BOM)

	if !utf8.Valid(b) {
		log.Warnf("%s contains invalid UTF-8, replacing invalid bytes", src)
		b = bytes.ToValidUTF8(b, []byte(string(utf8.RuneError)))
	}

	str := string(b)
	for bad, good := range charReplacements {
		str = strings.ReplaceAll(str, bad, good)
	}
	return strings.TrimSpace(str)
}
