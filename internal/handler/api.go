package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// DefaultGenerateTimeout bounds one background page generation.
const DefaultGenerateTimeout = 30 * time.Second

// Not-found item pages are kept briefly so a slug published later shows up,
// and their number is capped.
const (
	DefaultNotFoundTTL = time.Minute
	DefaultMaxMisses   = 1024
	DefaultMaxPending  = 64
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	source     cms.Source
	views      *view.Views
	pages      *cache.Cache
	misses     *cache.Cache
	maxMisses  int
	maxPending int
	revalidate time.Duration
	timeout    time.Duration
	refresh    int
	baseCtx    context.Context

	mu      sync.Mutex
	pending map[string]bool
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewAPI constructs a handler set. Generated pages older than revalidate are
// served once more while a fresh copy is generated; zero keeps them forever.
func NewAPI(source cms.Source, views *view.Views, revalidate time.Duration) *API {
	return &API{
		source:     source,
		views:      views,
		pages:      cache.New(cache.NoExpiration, 0),
		misses:     cache.New(DefaultNotFoundTTL, 2*DefaultNotFoundTTL),
		maxMisses:  DefaultMaxMisses,
		maxPending: DefaultMaxPending,
		revalidate: revalidate,
		timeout:    DefaultGenerateTimeout,
		refresh:    2,
		baseCtx:    context.Background(),
		pending:    make(map[string]bool),
		now:        time.Now,
	}
}

// SetBaseContext sets the parent context of background generations. Cancelling
// it stops pending fetches on shutdown.
func (a *API) SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	a.baseCtx = ctx
}

// Wait blocks until every background generation has finished.
func (a *API) Wait() {
	a.wg.Wait()
}

func (a *API) renderHTML(c *gin.Context, status int, name string, page view.Page) {
	c.HTML(status, name, page)
}

func (a *API) renderNotFound(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	a.renderHTML(c, http.StatusNotFound, view.TemplateNotFound, a.views.NotFoundPage(c.Request.URL.Path))
}

// NotFound 渲染 404 页面
func (a *API) NotFound(c *gin.Context) {
	a.renderNotFound(c)
}

// Health reports liveness and the number of generated pages.
func (a *API) Health(c *gin.Context) {
	a.mu.Lock()
	pending := len(a.pending)
	a.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"pages":   a.pages.ItemCount(),
		"misses":  a.misses.ItemCount(),
		"pending": pending,
	})
}
