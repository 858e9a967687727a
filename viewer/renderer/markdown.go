package renderer

import (
	"bytes"
	"fmt"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/klingtnet/mdv/slug"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Converter turns markdown into an HTML fragment.
type Converter interface {
	Convert(source []byte, w io.Writer) error
}

// NewGoldmark returns the goldmark instance used to render documents.
// Raw HTML embedded in documents is escaped unless unsafeHTML is set.
func NewGoldmark(unsafeHTML bool) goldmark.Markdown {
	options := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			emoji.Emoji,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	}
	if unsafeHTML {
		options = append(options, goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()))
	}

	return goldmark.New(options...)
}

// Markdown converts markdown documents to HTML.
// Heading IDs are generated by a slugifier so that search results can link to them.
type Markdown struct {
	md        goldmark.Markdown
	slugifier *slug.Slugifier
}

// NewMarkdown returns an instantiated markdown converter.
func NewMarkdown(md goldmark.Markdown, slugifier *slug.Slugifier) *Markdown {
	return &Markdown{
		md:        md,
		slugifier: slugifier,
	}
}

// Convert implements Converter.
func (m *Markdown) Convert(source []byte, w io.Writer) error {
	ctx := parser.NewContext(parser.WithIDs(&headingIDs{slug.NewRegistry(m.slugifier)}))
	err := m.md.Convert(source, w, parser.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("markdown conversion failed: %w", err)
	}

	return nil
}

// ConvertString is a convenience wrapper around Convert.
func (m *Markdown) ConvertString(source string) (string, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 2*len(source)))
	err := m.Convert([]byte(source), buf)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// headingIDs implements parser.IDs.
type headingIDs struct {
	registry *slug.Registry
}

func (ids *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(ids.registry.Next(string(value)))
}

func (ids *headingIDs) Put(value []byte) {
	ids.registry.Claim(string(value))
}

// HighlightCSS returns the stylesheet for highlighted code blocks using the chroma style name.
// Unknown styles fall back to chroma's default style.
func HighlightCSS(style string) (string, error) {
	buf := bytes.NewBuffer(nil)
	err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(buf, styles.Get(style))
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
