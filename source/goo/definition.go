package goo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/poiesic/wordbook/core"
	"golang.org/x/net/html"
)

// definition fetches one entry page and extracts it. query chooses the
// headword among the spellings in the page heading.
func (s *Source) definition(ctx context.Context, pageURL, query string) (core.LookupResult, error) {
	doc, resp, err := s.client.GetHTML(ctx, pageURL)
	if err != nil {
		return core.LookupResult{}, err
	}
	if doc == nil {
		return core.LookupResult{}, fmt.Errorf("%w: entry page %s redirected", core.ErrParseFailure, pageURL)
	}

	result, err := parseDefinition(doc, query)
	if err != nil {
		return core.LookupResult{}, err
	}

	if len(result.Definitions) == 0 && s.readable {
		if text := readableText(resp.Body, resp.URL); text != "" {
			result.Definitions = []string{text}
		}
	}
	if len(result.Definitions) == 0 {
		return core.LookupResult{}, fmt.Errorf("%w: entry page %s has no meanings", core.ErrParseFailure, pageURL)
	}
	return result, nil
}

// parseDefinition extracts an entry page. Pages that report an error
// wrap core.ErrNotFound; pages missing the heading wrap core.ErrParseFailure.
// A result with no definitions is returned without error so the caller
// can try a fallback.
func parseDefinition(doc *html.Node, query string) (core.LookupResult, error) {
	if errNode := selError.MatchFirst(doc); errNode != nil {
		return core.LookupResult{}, fmt.Errorf("%w: %s", core.ErrNotFound, strings.TrimSpace(textContent(errNode)))
	}

	heading := selHeading.MatchFirst(doc)
	if heading == nil {
		return core.LookupResult{}, fmt.Errorf("%w: entry page has no heading", core.ErrParseFailure)
	}
	forms := splitForms(cleanHeading(firstText(heading)))
	if len(forms) == 0 {
		return core.LookupResult{}, fmt.Errorf("%w: entry heading is empty", core.ErrParseFailure)
	}

	headword := forms[0]
	bestLen := core.CommonPrefixLen(query, headword)
	for _, f := range forms[1:] {
		if n := core.CommonPrefixLen(query, f); n > bestLen {
			headword, bestLen = f, n
		}
	}

	result := core.NewLookupResult(headword, Name)
	for _, f := range forms {
		if f != headword {
			result.Alternates = append(result.Alternates, f)
		}
	}
	if yomi := selYomi.MatchFirst(heading); yomi != nil {
		result.Reading = cleanHeading(firstText(yomi))
	}
	result.Definitions = meanings(doc)
	return result, nil
}

// meanings reads each numbered meaning list in the first section, or
// the meaning area of single-sense pages.
func meanings(doc *html.Node) []string {
	var out []string
	if section := selSection.MatchFirst(doc); section != nil {
		for _, ol := range selMeaning.MatchAll(section) {
			if m := joinTexts(ol); m != "" {
				out = append(out, m)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, contents := range selContents.MatchAll(doc) {
		if m := joinTexts(contents); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// joinTexts joins the .text elements under n with newlines.
func joinTexts(n *html.Node) string {
	var parts []string
	for _, t := range selMeaningText.MatchAll(n) {
		parts = append(parts, strings.TrimSpace(textContent(t)))
	}
	return strings.Join(parts, "\n")
}

// readableText extracts the main text of a page whose layout was not recognized.
func readableText(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
