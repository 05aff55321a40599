// Package webtext turns raw crawled page text into clean, chunked
// passages ready for embedding.
package webtext

import (
	"regexp"
	"strings"
)

// DefaultMinLineChars drops cleaned segments shorter than this.
const DefaultMinLineChars = 25

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`http\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)
	phoneRe      = regexp.MustCompile(`\+?\d[\d\s]{7,}`)

	// Recurring navbar/footer phrases seen across scraped sites.
	blacklistRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)home about us work contact us career`),
		regexp.MustCompile(`(?i)© \d{4}`),
		regexp.MustCompile(`(?i)newsletter`),
		regexp.MustCompile(`(?i)follow us`),
		regexp.MustCompile(`(?i)privacy policy`),
		regexp.MustCompile(`(?i)terms and conditions`),
		regexp.MustCompile(`(?i)copyright`),
		regexp.MustCompile(`(?i)all rights reserved`),
	}
)

// Cleaner strips boilerplate and junk from scraped page text.
type Cleaner struct {
	minLineChars int
}

// NewCleaner creates a Cleaner. minLineChars <= 0 selects the default.
func NewCleaner(minLineChars int) *Cleaner {
	if minLineChars <= 0 {
		minLineChars = DefaultMinLineChars
	}
	return &Cleaner{minLineChars: minLineChars}
}

// Clean normalizes whitespace, removes boilerplate phrases, URLs,
// email addresses and phone numbers, then drops short and duplicate
// sentence segments. Duplicate detection is case-insensitive.
//
// Empty input yields an empty string.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = whitespaceRe.ReplaceAllString(text, " ")

	for _, re := range blacklistRes {
		text = re.ReplaceAllString(text, " ")
	}

	text = urlRe.ReplaceAllString(text, " ")
	text = emailRe.ReplaceAllString(text, " ")
	text = phoneRe.ReplaceAllString(text, " ")

	segments := strings.Split(text, ".")
	cleaned := make([]string, 0, len(segments))
	seen := make(map[string]struct{}, len(segments))

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if len(seg) < c.minLineChars {
			continue
		}
		key := strings.ToLower(seg)
		if _, dup := seen[key]; dup {
			continue
		}
		cleaned = append(cleaned, seg)
		seen[key] = struct{}{}
	}

	return strings.TrimSpace(strings.Join(cleaned, ". "))
}
