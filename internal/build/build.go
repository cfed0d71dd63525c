// Package build writes every page of the site to a directory.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/metrics"
	"github.com/ephemera/internal/schema"
	"github.com/ephemera/internal/view"
	"github.com/ephemera/web"
	"github.com/sirupsen/logrus"
)

var ErrUnsafeSlug = errors.New("slug cannot be used as a path")

// FallbackRefresh is the reload interval of the fallback page, in seconds.
const FallbackRefresh = 2

// Result summarises a build.
type Result struct {
	Items     int
	Skipped   []string
	Designers int
	Files     int
}

// Builder generates the static site from a content source.
type Builder struct {
	source cms.Source
	views  *view.Views
	out    string
	files  int

	assetDir string
	assetRel string
}

func New(source cms.Source, views *view.Views, outDir string) *Builder {
	return &Builder{source: source, views: views, out: outDir}
}

// WithAssets copies every file under dir to rel inside the output, for image
// files the site serves itself.
func (b *Builder) WithAssets(dir, rel string) *Builder {
	b.assetDir = dir
	b.assetRel = rel
	return b
}

// Build enumerates every record, fetches and renders them one after another and
// writes the listing, fallback, 404 and designer pages. Any content source error
// aborts the build.
func (b *Builder) Build(ctx context.Context) (Result, error) {
	b.files = 0
	var result Result

	if err := os.MkdirAll(b.out, 0o755); err != nil {
		return result, err
	}

	slugs, err := b.source.Slugs(ctx, schema.RecordType)
	if err != nil {
		return result, fmt.Errorf("list record slugs: %w", err)
	}

	for _, slug := range slugs {
		if err := checkSlug(slug); err != nil {
			logrus.WithField("slug", slug).Warn("skipping record with unsafe slug")
			result.Skipped = append(result.Skipped, slug)
			continue
		}

		rec, err := b.source.Record(ctx, slug)
		if err != nil {
			return result, fmt.Errorf("fetch record %s: %w", slug, err)
		}
		if !rec.Published() {
			logrus.WithField("slug", slug).Warn("skipping record missing required fields")
			metrics.PagesRendered.WithLabelValues("item", "not_found").Inc()
			result.Skipped = append(result.Skipped, slug)
			continue
		}

		if err := b.write(filepath.Join("item", slug, "index.html"), view.TemplateItem, b.views.ItemPage(rec)); err != nil {
			return result, err
		}
		metrics.PagesRendered.WithLabelValues("item", "ok").Inc()
		result.Items++
	}

	records, err := b.source.Records(ctx, schema.OrderPublishedAtDesc)
	if err != nil {
		return result, fmt.Errorf("list records: %w", err)
	}
	index := b.views.IndexPage(records, schema.OrderPublishedAtDesc, 1, len(records))
	index.Index.Orderings = nil
	if err := b.write("index.html", view.TemplateIndex, index); err != nil {
		return result, err
	}

	if err := b.write("404.html", view.TemplateNotFound, b.views.NotFoundPage("/404.html")); err != nil {
		return result, err
	}
	if err := b.write(filepath.Join("item", "_fallback.html"), view.TemplateLoading, b.views.LoadingPage("_fallback", FallbackRefresh)); err != nil {
		return result, err
	}

	designers, err := b.source.Slugs(ctx, schema.DesignerType)
	if err != nil {
		return result, fmt.Errorf("list designer slugs: %w", err)
	}
	for _, slug := range designers {
		if checkSlug(slug) != nil {
			continue
		}
		designer, err := b.source.Designer(ctx, slug)
		if err != nil {
			return result, fmt.Errorf("fetch designer %s: %w", slug, err)
		}
		if strings.TrimSpace(designer.Slug) == "" {
			continue
		}
		if err := b.write(filepath.Join("designer", slug, "index.html"), view.TemplateDesigner, b.views.DesignerPageFor(designer)); err != nil {
			return result, err
		}
		result.Designers++
	}

	if err := b.copyStatic(); err != nil {
		return result, err
	}
	if err := b.copyAssets(); err != nil {
		return result, fmt.Errorf("copy assets: %w", err)
	}

	result.Files = b.files
	logrus.WithFields(logrus.Fields{
		"items":     result.Items,
		"skipped":   len(result.Skipped),
		"designers": result.Designers,
		"files":     result.Files,
	}).Info("build finished")
	return result, nil
}

func (b *Builder) write(rel, name string, page view.Page) error {
	var buf bytes.Buffer
	if err := b.views.Render(&buf, name, page); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}
	return b.writeFile(rel, buf.Bytes())
}

func (b *Builder) writeFile(rel string, data []byte) error {
	target := filepath.Join(b.out, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	b.files++
	return nil
}

func (b *Builder) copyStatic() error {
	return fs.WalkDir(web.Static, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(web.Static, p)
		if err != nil {
			return err
		}
		return b.writeFile(filepath.FromSlash(p), data)
	})
}

func (b *Builder) copyAssets() error {
	if b.assetDir == "" {
		return nil
	}
	if _, err := os.Stat(b.assetDir); errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("dir", b.assetDir).Warn("asset directory missing, no images copied")
		return nil
	}
	return filepath.WalkDir(b.assetDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return err
		}
		rel, err := filepath.Rel(b.assetDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return b.writeFile(filepath.Join(b.assetRel, rel), data)
	})
}

func checkSlug(slug string) error {
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) || strings.HasPrefix(slug, "_") {
		return fmt.Errorf("%w: %q", ErrUnsafeSlug, slug)
	}
	return nil
}
