package goo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/poiesic/wordbook/core"
	"golang.org/x/net/html"
)

// candidate is one entry on the search results page.
type candidate struct {
	URL   string
	Title string
	Text  string
}

// candidates fetches the search page for word. When the site redirects
// straight to an entry, that entry is the only candidate.
func (s *Source) candidates(ctx context.Context, word string) ([]candidate, error) {
	searchURL := s.baseURL + "/srch/jn/" + url.PathEscape(word) + "/m0u/"

	doc, resp, err := s.client.GetHTML(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	if loc := resp.Location(); loc != "" {
		target, err := s.resolve(loc)
		if err != nil {
			return nil, err
		}
		return []candidate{{URL: target, Title: word}}, nil
	}
	return s.parseCandidates(doc)
}

// parseCandidates reads the content list of a search results page.
// Items without a link or a title are skipped.
func (s *Source) parseCandidates(doc *html.Node) ([]candidate, error) {
	list := selContentList.MatchFirst(doc)
	if list == nil {
		return nil, fmt.Errorf("%w: search page has no content list", core.ErrParseFailure)
	}

	var out []candidate
	for _, li := range selItem.MatchAll(list) {
		link := selLink.MatchFirst(li)
		if link == nil {
			continue
		}
		title := selTitle.MatchFirst(li)
		if title == nil {
			continue
		}
		target, err := s.resolve(attr(link, "href"))
		if err != nil {
			s.logger.Debug("skipping candidate with bad link", "href", attr(link, "href"), "err", err)
			continue
		}

		c := candidate{URL: target, Title: strings.TrimSpace(textContent(title))}
		if text := selText.MatchFirst(li); text != nil {
			c.Text = strings.TrimSpace(textContent(text))
		}
		out = append(out, c)
	}
	return out, nil
}

// resolve makes href absolute against the site origin and drops the fragment.
func (s *Source) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: bad candidate link %q: %w", core.ErrParseFailure, href, err)
	}
	u := s.origin.ResolveReference(ref)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// bestCandidate picks the candidate with a title spelling sharing the
// longest prefix with word, keeping the earliest on ties.
func bestCandidate(cands []candidate, word string) candidate {
	best, bestLen := 0, -1
	for i, c := range cands {
		n := 0
		for _, form := range titleForms(c.Title) {
			n = max(n, core.CommonPrefixLen(word, form))
		}
		if n > bestLen {
			best, bestLen = i, n
		}
	}
	return cands[best]
}
