package parser

import (
	"regexp"
	"strings"
)

var (
	productIDPattern  = regexp.MustCompile(`p(\d+)`)
	postalCodePattern = regexp.MustCompile(`^\d{4}$`)
)

// ExtractProductID returns the digits following the first literal "p" that is
// immediately followed by a digit.
func ExtractProductID(productURL string) (string, bool) {
	m := productIDPattern.FindStringSubmatch(productURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizePostalCode trims input and reports whether it is usable as a
// filter. Empty input is valid and means no filter.
func NormalizePostalCode(input string) (string, bool) {
	code := strings.TrimSpace(input)
	if code == "" {
		return "", true
	}
	if !postalCodePattern.MatchString(code) {
		return "", false
	}
	return code, true
}

// VariantFields carries the candidate identifier and title fields of one
// raw variant record.
type VariantFields struct {
	VariantID string
	ArticleID string
	FullTitle string
	Title     string
	Name      string
}

// ID prefers the variant-specific identifier over the article-level one.
func (f VariantFields) ID() string {
	return firstNonEmpty(f.VariantID, f.ArticleID)
}

// DisplayTitle returns the first non-empty of the three title fields.
func (f VariantFields) DisplayTitle() string {
	return firstNonEmpty(f.FullTitle, f.Title, f.Name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
