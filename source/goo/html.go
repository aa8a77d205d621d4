package goo

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/width"
)

var (
	selContentList = cascadia.MustCompile("div.section ul.content_list")
	selItem        = cascadia.MustCompile("li")
	selLink        = cascadia.MustCompile("a[href]")
	selTitle       = cascadia.MustCompile("p.title")
	selText        = cascadia.MustCompile("p.text")

	selError       = cascadia.MustCompile("div#NR-main div.error")
	selHeading     = cascadia.MustCompile("div#NR-main h1")
	selYomi        = cascadia.MustCompile("span.yomi")
	selSection     = cascadia.MustCompile("div.section")
	selMeaning     = cascadia.MustCompile("ol.meaning")
	selMeaningText = cascadia.MustCompile(".text")
	selContents    = cascadia.MustCompile("div.meaning_area div.contents")
)

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// firstText returns the first text node under n that is not blank.
func firstText(n *html.Node) string {
	if n.Type == html.TextNode {
		if strings.TrimSpace(n.Data) != "" {
			return n.Data
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := firstText(c); s != "" {
			return s
		}
	}
	return ""
}

// attr returns the value of the named attribute.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

var parenStripper = strings.NewReplacer("\n", "", "(", "", ")", "")

// cleanHeading folds fullwidth punctuation to ASCII and drops newlines
// and parentheses, so "（ねこ）" becomes "ねこ".
func cleanHeading(s string) string {
	return strings.TrimSpace(parenStripper.Replace(width.Fold.String(s)))
}

// splitForms splits a cleaned heading on the slash between spellings.
func splitForms(s string) []string {
	var forms []string
	for _, f := range strings.Split(s, "/") {
		if f = strings.TrimSpace(f); f != "" {
			forms = append(forms, f)
		}
	}
	return forms
}

// titleForms returns the spellings in a candidate title such as
// "ねこ【猫】" or "ねこ【猫・ネコ】".
func titleForms(title string) []string {
	title = strings.TrimSpace(title)
	head, rest, found := strings.Cut(title, "【")
	forms := []string{strings.TrimSpace(head)}
	if !found {
		return forms
	}
	inner, _, _ := strings.Cut(rest, "】")
	for _, f := range strings.FieldsFunc(inner, func(r rune) bool { return r == '・' || r == '／' }) {
		if f = strings.TrimSpace(f); f != "" {
			forms = append(forms, f)
		}
	}
	return forms
}
