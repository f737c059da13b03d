package content

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const wordsPerMinute = 200

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\n]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// stripHTML reduces an HTML fragment to plain text. Tags become spaces,
// entities are decoded and whitespace runs collapse to one space.
func stripHTML(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var sb strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a == atom.Script || a == atom.Style {
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
			}
			sb.WriteByte(' ')
		default:
			sb.WriteByte(' ')
		}
	}
}

// readingTime estimates minutes at 200 words per minute, rounded up, never
// below one.
func readingTime(text string) string {
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// htmlToMarkdown converts rendered CMS HTML into markdown with ATX headings
// and fenced code blocks. Elements without a markdown form keep only their
// text.
func htmlToMarkdown(src string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return stripHTML(src)
	}

	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(toMarkdown(n))
	}
	return tidyMarkdown(sb.String())
}

func toMarkdown(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return spaceRun.ReplaceAllString(n.Data, " ")
	case html.ElementNode:
	case html.CommentNode, html.DoctypeNode:
		return ""
	default:
		return childrenMarkdown(n)
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		return block(strings.Repeat("#", level) + " " + strings.TrimSpace(childrenMarkdown(n)))
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Figure, atom.Figcaption:
		return block(strings.TrimSpace(childrenMarkdown(n)))
	case atom.Br:
		return "\n"
	case atom.Hr:
		return block("---")
	case atom.Strong, atom.B:
		return wrapInline(childrenMarkdown(n), "**")
	case atom.Em, atom.I:
		return wrapInline(childrenMarkdown(n), "_")
	case atom.Code:
		return "`" + textContent(n) + "`"
	case atom.A:
		text := strings.TrimSpace(childrenMarkdown(n))
		href := attr(n, "href")
		if href == "" {
			return text
		}
		return "[" + text + "](" + href + ")"
	case atom.Img:
		return "![" + attr(n, "alt") + "](" + attr(n, "src") + ")"
	case atom.Ul, atom.Ol:
		return listMarkdown(n, n.DataAtom == atom.Ol)
	case atom.Pre:
		return fencedCode(n)
	case atom.Blockquote:
		inner := tidyMarkdown(childrenMarkdown(n))
		return block("> " + strings.ReplaceAll(inner, "\n", "\n> "))
	case atom.Script, atom.Style:
		return ""
	}
	return childrenMarkdown(n)
}

func childrenMarkdown(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(toMarkdown(c))
	}
	return sb.String()
}

func block(s string) string {
	if s == "" {
		return ""
	}
	return "\n\n" + s + "\n\n"
}

func wrapInline(inner, marker string) string {
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return inner
	}
	return marker + trimmed + marker
}

func listMarkdown(n *html.Node, ordered bool) string {
	var lines []string
	i := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		i++
		prefix := "- "
		if ordered {
			prefix = fmt.Sprintf("%d. ", i)
		}
		item := tidyMarkdown(childrenMarkdown(li))
		lines = append(lines, prefix+strings.ReplaceAll(item, "\n", "\n   "))
	}
	return block(strings.Join(lines, "\n"))
}

// fencedCode keeps the raw text of a <pre> block. A language-* class on the
// inner <code> becomes the fence info string.
func fencedCode(n *html.Node) string {
	lang := ""
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			for _, class := range strings.Fields(attr(c, "class")) {
				if l, ok := strings.CutPrefix(class, "language-"); ok {
					lang = l
				}
			}
		}
	}
	code := strings.Trim(textContent(n), "\n")
	return "\n\n```" + lang + "\n" + code + "\n```\n\n"
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// tidyMarkdown trims line ends and squeezes blank-line runs.
func tidyMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
