package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/imageurl"
	"github.com/ephemera/internal/portabletext"
	"github.com/ephemera/web"
)

// Template names.
const (
	TemplateItem     = "item.html"
	TemplateLoading  = "loading.html"
	TemplateNotFound = "not_found.html"
	TemplateIndex    = "index.html"
	TemplateDesigner = "designer.html"
)

// DefaultSiteName is used when no site name is configured.
const DefaultSiteName = "Ephemera"

// Config holds what every page needs to know about the site.
type Config struct {
	SiteName string
	BaseURL  string
	Images   imageurl.Source
}

// Views builds page models and renders them.
type Views struct {
	cfg  Config
	text *portabletext.Renderer
	tmpl *template.Template
}

// Page is the data handed to every template.
type Page struct {
	SiteName string
	Title    string
	Meta     Meta
	Path     string
	Refresh  int
	Item     *Item
	Index    *Index
	Designer *DesignerPage
}

// New parses the embedded templates.
func New(cfg Config) (*Views, error) {
	cfg.SiteName = strings.TrimSpace(cfg.SiteName)
	if cfg.SiteName == "" {
		cfg.SiteName = DefaultSiteName
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	// 加载模板并添加自定义函数
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Views{
		cfg:  cfg,
		text: portabletext.New(cfg.Images),
		tmpl: tmpl,
	}, nil
}

// Templates exposes the parsed template set, e.g. for gin's HTML renderer.
func (v *Views) Templates() *template.Template {
	return v.tmpl
}

// SiteName returns the configured site name.
func (v *Views) SiteName() string {
	return v.cfg.SiteName
}

// URL makes a site path absolute.
func (v *Views) URL(path string) string {
	if v.cfg.BaseURL == "" {
		return path
	}
	return v.cfg.BaseURL + path
}

// Render executes the named template.
func (v *Views) Render(w io.Writer, name string, page Page) error {
	return v.tmpl.ExecuteTemplate(w, name, page)
}

func (v *Views) page(title, path string) Page {
	return Page{
		SiteName: v.cfg.SiteName,
		Title:    PageTitle(title, v.cfg.SiteName),
		Path:     path,
		Meta: Meta{
			Title:        PageTitle(title, v.cfg.SiteName),
			CanonicalURL: v.URL(path),
			Type:         "website",
			SiteName:     v.cfg.SiteName,
		},
	}
}

// ItemPage is the page of a published record.
func (v *Views) ItemPage(rec content.Record) Page {
	page := v.page(rec.Title, ItemPath(rec.Slug))
	page.Meta = v.Meta(rec)
	item := v.Item(rec)
	page.Item = &item
	return page
}

// LoadingPage is served while a record page is generated in the background. It
// reloads itself after refresh seconds.
func (v *Views) LoadingPage(slug string, refresh int) Page {
	page := v.page("Loading…", ItemPath(slug))
	if refresh < 1 {
		refresh = 1
	}
	page.Refresh = refresh
	return page
}

// NotFoundPage is served for unknown or unpublished documents.
func (v *Views) NotFoundPage(path string) Page {
	return v.page("Not found", path)
}

// DesignerPage lists the records credited to a designer.
type DesignerPage struct {
	Info  DesignerInfo
	Bio   template.HTML
	Cards []Card
}

// DesignerPageFor builds the page of a designer.
func (v *Views) DesignerPageFor(designer content.Designer) Page {
	page := v.page(designer.Name(), DesignerPath(designer.Slug))
	body := &DesignerPage{
		Info: DesignerInfo{Name: designer.Name(), URL: DesignerPath(designer.Slug)},
		Bio:  v.text.Render(designer.Bio),
	}
	for _, rec := range designer.Records {
		if rec.Published() {
			body.Cards = append(body.Cards, v.Card(rec))
		}
	}
	page.Designer = body
	return page
}
