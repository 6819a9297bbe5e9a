package remote

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// MaxDescriptionLength caps descriptions taken from a README.
const MaxDescriptionLength = 500

// ReadmeInfo is what a README contributes to a plugin record.
type ReadmeInfo struct {
	Description string
	Tags        []string
}

// ReadmeParser extracts summary information from README markdown.
type ReadmeParser struct {
	md goldmark.Markdown
}

// NewReadmeParser creates a parser with front matter support.
func NewReadmeParser() *ReadmeParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.Meta,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &ReadmeParser{md: md}
}

// Parse reads front matter "description" and "tags" when present. Without a
// front matter description, the first top-level paragraph with visible text is
// used (badges and images are skipped).
func (p *ReadmeParser) Parse(readme string) ReadmeInfo {
	src := []byte(readme)
	ctx := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var info ReadmeInfo
	fm := meta.Get(ctx)
	if desc, ok := fm["description"].(string); ok {
		info.Description = truncate(strings.TrimSpace(desc))
	}
	info.Tags = stringList(fm["tags"])

	if info.Description != "" {
		return info
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindParagraph {
			continue
		}
		var b strings.Builder
		inlineText(n, src, &b)
		if s := strings.Join(strings.Fields(b.String()), " "); s != "" {
			info.Description = truncate(s)
			break
		}
	}
	return info
}

func inlineText(n ast.Node, src []byte, b *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Image, *ast.RawHTML:
			continue
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		default:
			inlineText(c, src, b)
		}
	}
}

// stringList accepts the shapes YAML front matter produces for a list.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxDescriptionLength {
		return s
	}
	return string(r[:MaxDescriptionLength-3]) + "..."
}
