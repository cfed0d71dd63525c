package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ephemera/internal/metrics"
	"github.com/ephemera/internal/schema"
	"github.com/ephemera/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const maxSlugLength = 200

type renderedPage struct {
	status      int
	body        []byte
	generatedAt time.Time
}

func itemCacheKey(slug string) string {
	return "item:" + slug
}

// Prerender generates every known record page sequentially. It stops at the
// first content source error.
func (a *API) Prerender(ctx context.Context) (int, error) {
	slugs, err := a.source.Slugs(ctx, schema.RecordType)
	if err != nil {
		return 0, fmt.Errorf("list slugs: %w", err)
	}

	count := 0
	for _, slug := range slugs {
		if _, err := a.generate(ctx, slug); err != nil {
			return count, fmt.Errorf("generate %s: %w", slug, err)
		}
		count++
	}
	return count, nil
}

// generate fetches one record and stores its rendered page. Unpublished or
// absent records get a not-found page that expires after the miss TTL.
func (a *API) generate(ctx context.Context, slug string) (renderedPage, error) {
	rec, err := a.source.Record(ctx, slug)
	if err != nil {
		return renderedPage{}, err
	}

	var (
		buf   bytes.Buffer
		page  = renderedPage{status: http.StatusOK, generatedAt: a.now()}
		state = "ok"
	)
	if rec.Published() {
		err = a.views.Render(&buf, view.TemplateItem, a.views.ItemPage(rec))
	} else {
		page.status = http.StatusNotFound
		state = "not_found"
		err = a.views.Render(&buf, view.TemplateNotFound, a.views.NotFoundPage(view.ItemPath(slug)))
	}
	if err != nil {
		return renderedPage{}, fmt.Errorf("render: %w", err)
	}
	page.body = buf.Bytes()

	key := itemCacheKey(slug)
	if page.status == http.StatusOK {
		a.pages.Set(key, page, cache.NoExpiration)
		a.misses.Delete(key)
	} else {
		a.pages.Delete(key)
		if a.misses.ItemCount() < a.maxMisses {
			a.misses.Set(key, page, cache.DefaultExpiration)
		}
	}
	metrics.PagesRendered.WithLabelValues("item", state).Inc()
	logrus.WithFields(logrus.Fields{"slug": slug, "state": state}).Debug("generated item page")
	return page, nil
}

// startGeneration schedules a background generation unless one is running
// for the slug or too many are in flight.
func (a *API) startGeneration(slug string) bool {
	a.mu.Lock()
	if a.pending[slug] || len(a.pending) >= a.maxPending {
		a.mu.Unlock()
		return false
	}
	a.pending[slug] = true
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		defer func() {
			a.mu.Lock()
			delete(a.pending, slug)
			a.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(a.baseCtx, a.timeout)
		defer cancel()

		if _, err := a.generate(ctx, slug); err != nil {
			logrus.WithError(err).WithField("slug", slug).Warn("failed to generate item page")
		}
	}()
	return true
}

// ShowItem serves a record page. Pages not generated yet are generated in the
// background while a loading placeholder is served.
func (a *API) ShowItem(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" || len(slug) > maxSlugLength {
		a.renderNotFound(c)
		return
	}

	key := itemCacheKey(slug)
	if cached, ok := a.pages.Get(key); ok {
		page := cached.(renderedPage)
		if a.revalidate > 0 && a.now().Sub(page.generatedAt) > a.revalidate {
			a.startGeneration(slug)
		}
		c.Data(page.status, "text/html; charset=utf-8", page.body)
		return
	}
	if cached, ok := a.misses.Get(key); ok {
		page := cached.(renderedPage)
		c.Header("Cache-Control", "no-store")
		c.Data(page.status, "text/html; charset=utf-8", page.body)
		return
	}

	a.startGeneration(slug)
	metrics.PagesRendered.WithLabelValues("item", "loading").Inc()
	c.Header("Cache-Control", "no-store")
	a.renderHTML(c, http.StatusOK, view.TemplateLoading, a.views.LoadingPage(slug, a.refresh))
}
