package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/metrics"
	"github.com/ephemera/internal/schema"
	"github.com/ephemera/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func recordsCacheKey(ordering string) string {
	return "records:" + ordering
}

func (a *API) records(c *gin.Context, ordering string) ([]content.Record, error) {
	key := recordsCacheKey(ordering)
	if cached, ok := a.pages.Get(key); ok {
		return cached.([]content.Record), nil
	}

	records, err := a.source.Records(c.Request.Context(), ordering)
	if err != nil {
		return nil, err
	}
	if a.revalidate > 0 {
		a.pages.Set(key, records, a.revalidate)
	}
	return records, nil
}

// ShowHome 渲染藏品列表，支持排序与分页
func (a *API) ShowHome(c *gin.Context) {
	ordering := strings.TrimSpace(c.Query("order"))
	if _, ok := schema.Record.Ordering(ordering); !ok {
		ordering = schema.OrderPublishedAtDesc
	}
	page := parsePositiveInt(c.Query("page"), 1)
	perPage := parsePositiveInt(c.Query("perPage"), view.DefaultPerPage)
	if perPage > 100 {
		perPage = 100
	}

	records, err := a.records(c, ordering)
	if err != nil {
		logrus.WithError(err).WithField("ordering", ordering).Error("failed to list records")
		c.Error(err)
		c.AbortWithStatus(http.StatusBadGateway)
		return
	}

	metrics.PagesRendered.WithLabelValues("index", "ok").Inc()
	a.renderHTML(c, http.StatusOK, view.TemplateIndex, a.views.IndexPage(records, ordering, page, perPage))
}

// ShowDesigner 渲染设计师页面
func (a *API) ShowDesigner(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" || len(slug) > maxSlugLength {
		a.renderNotFound(c)
		return
	}

	designer, err := a.source.Designer(c.Request.Context(), slug)
	if err != nil {
		logrus.WithError(err).WithField("slug", slug).Error("failed to fetch designer")
		c.Error(err)
		c.AbortWithStatus(http.StatusBadGateway)
		return
	}
	if strings.TrimSpace(designer.Slug) == "" {
		metrics.PagesRendered.WithLabelValues("designer", "not_found").Inc()
		a.renderNotFound(c)
		return
	}

	metrics.PagesRendered.WithLabelValues("designer", "ok").Inc()
	a.renderHTML(c, http.StatusOK, view.TemplateDesigner, a.views.DesignerPageFor(designer))
}

func parsePositiveInt(value string, fallback int) int {
	num, err := strconv.Atoi(value)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}
