package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const DefaultFilename = "document.pdf"

var foldFilename = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeFilename reduces a caller-supplied output filename to a safe
// ascii form and pins the .pdf extension. Diacritics are folded rather than
// dropped so "Rechnung März" becomes "rechnung-marz.pdf".
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultFilename
	}
	if ext := strings.ToLower(name); strings.HasSuffix(ext, ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}

	if folded, _, err := transform.String(foldFilename, name); err == nil {
		name = folded
	}
	name = cases.Lower(language.Und).String(name)

	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return DefaultFilename
	}
	return out + ".pdf"
}
