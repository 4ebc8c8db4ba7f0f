package api

import (
	"Bulletin/internal/api/config"
	"Bulletin/internal/api/middleware"
	"Bulletin/internal/pkg/logger"
	"Bulletin/internal/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterDeps 路由层依赖的鉴权与观测组件
type RouterDeps struct {
	Server       config.ServerConfig
	TokenManager *security.TokenManager
	Redis        redis.Cmdable
	Gatherer     prometheus.Gatherer
}

func SetupRouter(group *HandlersGroup, deps RouterDeps) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(deps.Server.TrustedProxies)

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(deps.Server.AllowedOrigins))
	logger.SetupGin(r)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("/detail/:post_id", middleware.AuthOptionalMiddleware(deps.TokenManager), group.PostHandler.GetPost)

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware(deps.TokenManager, deps.Redis))
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
			}
		}
	}

	return r
}
