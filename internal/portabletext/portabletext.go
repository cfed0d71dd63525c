// Package portabletext renders rich-text block arrays to sanitised HTML.
package portabletext

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/imageurl"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Block types with built-in handlers.
const (
	TypeBlock    = "block"
	TypeImage    = "image"
	TypeMarkdown = "markdown"
)

// Embedded images are resized to this box.
const (
	EmbedWidth  = 320
	EmbedHeight = 240
)

// BlockHandler renders one block. Returning "" omits the block.
type BlockHandler func(block content.Block) (string, error)

// Renderer maps block types to handlers.
type Renderer struct {
	images   imageurl.Source
	handlers map[string]BlockHandler
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

var loadingAttr = regexp.MustCompile(`^(lazy|eager)$`)

// New returns a renderer with handlers for text blocks, embedded images and
// markdown snippets.
func New(images imageurl.Source) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("loading").Matching(loadingAttr).OnElements("img")

	r := &Renderer{
		images: images,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
		),
		policy: policy,
	}
	r.handlers = make(map[string]BlockHandler)
	r.handle(TypeBlock, r.renderTextBlock)
	r.handle(TypeImage, r.renderImage)
	r.handle(TypeMarkdown, r.renderMarkdown)
	return r
}

// handle registers or replaces the handler for a block type.
func (r *Renderer) handle(blockType string, handler BlockHandler) {
	r.handlers[blockType] = handler
}

// Render converts blocks to HTML. Blocks of unknown type and blocks whose
// handler fails are skipped.
func (r *Renderer) Render(blocks []content.Block) template.HTML {
	var buf bytes.Buffer

	for i := 0; i < len(blocks); {
		block := blocks[i]

		if block.Type == TypeBlock && block.ListItem != "" {
			end := i
			for end < len(blocks) && blocks[end].Type == TypeBlock && blocks[end].ListItem == block.ListItem {
				end++
			}
			r.renderList(&buf, blocks[i:end])
			i = end
			continue
		}

		handler, ok := r.handlers[block.Type]
		if !ok {
			logrus.WithField("type", block.Type).Debug("skipping block of unknown type")
			i++
			continue
		}

		out, err := handler(block)
		if err != nil {
			logrus.WithError(err).WithField("type", block.Type).Warn("skipping block that failed to render")
			i++
			continue
		}
		buf.WriteString(out)
		i++
	}

	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

func (r *Renderer) renderList(buf *bytes.Buffer, items []content.Block) {
	tag := "ul"
	if items[0].ListItem == "number" {
		tag = "ol"
	}
	buf.WriteString("<" + tag + ">")
	for _, item := range items {
		buf.WriteString("<li>")
		buf.WriteString(renderSpans(item))
		buf.WriteString("</li>")
	}
	buf.WriteString("</" + tag + ">")
}

func (r *Renderer) renderTextBlock(block content.Block) (string, error) {
	tag := "p"
	switch block.Style {
	case "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
		tag = block.Style
	}
	return "<" + tag + ">" + renderSpans(block) + "</" + tag + ">", nil
}

func (r *Renderer) renderImage(block content.Block) (string, error) {
	img := block.Image()
	if img.AssetRef() == "" {
		return "", nil
	}

	src, err := r.images.Image(img).
		Width(EmbedWidth).
		Height(EmbedHeight).
		Fit(imageurl.FitMax).
		Auto(imageurl.AutoFormat).
		URL()
	if err != nil {
		return "", err
	}

	alt := img.Alt
	if strings.TrimSpace(alt) == "" {
		alt = " "
	}
	return `<img alt="` + html.EscapeString(alt) + `" loading="lazy" src="` + html.EscapeString(src) + `"/>`, nil
}

func (r *Renderer) renderMarkdown(block content.Block) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(block.Markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

func renderSpans(block content.Block) string {
	links := make(map[string]string, len(block.MarkDefs))
	for _, def := range block.MarkDefs {
		if def.Type == "link" {
			links[def.Key] = def.Href
		}
	}

	var b strings.Builder
	for _, span := range block.Children {
		var closers []string
		for _, mark := range span.Marks {
			if tag, ok := decorators[mark]; ok {
				b.WriteString("<" + tag + ">")
				closers = append(closers, "</"+tag+">")
				continue
			}
			if href, ok := links[mark]; ok {
				b.WriteString(`<a href="` + html.EscapeString(href) + `">`)
				closers = append(closers, "</a>")
			}
		}
		b.WriteString(strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br/>"))
		for i := len(closers) - 1; i >= 0; i-- {
			b.WriteString(closers[i])
		}
	}
	return b.String()
}
