package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanOverview strips HTML markup some endpoints embed in synopses and collapses whitespace.
func CleanOverview(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsRune(s, '<') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
