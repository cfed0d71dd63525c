package router

import (
	"io/fs"
	"net/http"

	"github.com/ephemera/internal/handler"
	"github.com/ephemera/internal/view"
	"github.com/ephemera/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 配置 Gin 引擎和路由
// imageDir, when set, is served under /images for content mirrored locally.
func SetupRouter(api *handler.API, views *view.Views, imageDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), Metrics())

	// 加载嵌入的模板
	r.SetHTMLTemplate(views.Templates())

	// 静态文件服务
	if static, err := fs.Sub(web.Static, "static"); err == nil {
		r.StaticFS("/static", http.FS(static))
	}
	if imageDir != "" {
		r.Static("/images", imageDir)
	}

	r.GET("/", api.ShowHome)
	r.GET("/item/:slug", api.ShowItem)
	r.GET("/designer/:slug", api.ShowDesigner)
	r.GET("/healthz", api.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(api.NotFound)

	return r
}
