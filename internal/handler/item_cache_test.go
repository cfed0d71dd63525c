package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ephemera/internal/cms/cmstest"
	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/imageurl"
	"github.com/ephemera/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func posterRecord(title string) content.Record {
	return content.Record{
		ID:          "rec-1",
		Title:       title,
		Slug:        "acme-poster",
		PublishedAt: time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC),
		MainImage:   &content.Image{Asset: &content.Reference{Ref: "image-abc-800x1200-jpg"}},
	}
}

func newTestAPI(t *testing.T, source *cmstest.Source, revalidate time.Duration) (*API, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	views, err := view.New(view.Config{
		BaseURL: "https://ephemera.example.com",
		Images:  imageurl.New(imageurl.Config{ProjectID: "proj", Dataset: "production"}),
	})
	if err != nil {
		t.Fatalf("failed to build views: %v", err)
	}

	api := NewAPI(source, views, revalidate)
	r := gin.New()
	r.SetHTMLTemplate(views.Templates())
	r.GET("/", api.ShowHome)
	r.GET("/item/:slug", api.ShowItem)
	return api, r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestShowItemServesStalePageWhileRegenerating(t *testing.T) {
	source := cmstest.New(posterRecord("Acme Poster"))
	api, r := newTestAPI(t, source, time.Minute)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	api.now = clock.Now

	if _, err := api.Prerender(context.Background()); err != nil {
		t.Fatalf("Prerender returned error: %v", err)
	}

	source.Put(posterRecord("Acme Poster Reissue"))

	clock.Advance(30 * time.Second)
	if body := serve(r, "/item/acme-poster").Body.String(); strings.Contains(body, "Reissue") {
		t.Fatal("fresh page should not be regenerated")
	}
	api.Wait()
	if calls := source.Calls("record"); calls != 1 {
		t.Fatalf("expected no refetch before revalidate, got %d fetches", calls)
	}

	clock.Advance(time.Minute)
	rr := serve(r, "/item/acme-poster")
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "Reissue") {
		t.Fatalf("expected the stale page first, got %d", rr.Code)
	}
	api.Wait()

	if body := serve(r, "/item/acme-poster").Body.String(); !strings.Contains(body, "Acme Poster Reissue") {
		t.Fatalf("expected regenerated page, got %s", body)
	}
}

func TestShowHomeCachesListingWhenRevalidating(t *testing.T) {
	source := cmstest.New(posterRecord("Acme Poster"))
	_, r := newTestAPI(t, source, time.Minute)

	serve(r, "/")
	serve(r, "/?page=1")
	if calls := source.Calls("records"); calls != 1 {
		t.Fatalf("expected one listing query, got %d", calls)
	}

	serve(r, "/?order=artworkDateAsc")
	if calls := source.Calls("records"); calls != 2 {
		t.Fatalf("each ordering is cached separately, got %d queries", calls)
	}
}

func TestShowHomeWithoutRevalidateQueriesEachTime(t *testing.T) {
	source := cmstest.New(posterRecord("Acme Poster"))
	_, r := newTestAPI(t, source, 0)

	serve(r, "/")
	serve(r, "/")
	if calls := source.Calls("records"); calls != 2 {
		t.Fatalf("expected a query per request, got %d", calls)
	}
}

func TestUnknownSlugsStayOutOfPageCache(t *testing.T) {
	api, r := newTestAPI(t, cmstest.New(posterRecord("Acme Poster")), 0)
	api.maxMisses = 3

	for i := 0; i < 10; i++ {
		serve(r, fmt.Sprintf("/item/nope-%d", i))
		api.Wait()
	}

	if n := api.pages.ItemCount(); n != 0 {
		t.Fatalf("not-found pages should not enter the page cache, got %d entries", n)
	}
	if n := api.misses.ItemCount(); n != 3 {
		t.Fatalf("expected misses capped at 3, got %d", n)
	}
}

func TestNotFoundPageExpiresOnceRecordIsPublished(t *testing.T) {
	source := cmstest.New()
	api, r := newTestAPI(t, source, 0)
	api.misses = cache.New(20*time.Millisecond, 0)

	serve(r, "/item/acme-poster")
	api.Wait()
	if rr := serve(r, "/item/acme-poster"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}

	source.Put(posterRecord("Acme Poster"))
	time.Sleep(30 * time.Millisecond)

	if rr := serve(r, "/item/acme-poster"); !strings.Contains(rr.Body.String(), "Loading") {
		t.Fatalf("expired miss should trigger a new generation, got %s", rr.Body.String())
	}
	api.Wait()
	if rr := serve(r, "/item/acme-poster"); rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 after publishing, got %d", rr.Code)
	}
}

func TestStartGenerationRespectsPendingLimit(t *testing.T) {
	api, _ := newTestAPI(t, cmstest.New(), 0)
	api.maxPending = 1

	api.mu.Lock()
	api.pending["busy"] = true
	api.mu.Unlock()

	if api.startGeneration("other") {
		t.Fatal("generation should not start while the pending limit is reached")
	}

	api.mu.Lock()
	delete(api.pending, "busy")
	api.mu.Unlock()

	if !api.startGeneration("other") {
		t.Fatal("generation should start once a slot frees up")
	}
	api.Wait()
}
