package router

import (
	"phreddit/internal/config"
	"phreddit/internal/db"
	"phreddit/internal/handlers"
	"phreddit/internal/middleware"
	"phreddit/internal/services"
	"phreddit/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const sessionName = "phreddit_session"

// viewRoute is the full pattern of the view counter route.
const viewRoute = "/api/posts/:id/view"

// New builds the engine with middleware and every route registered.
func New(cfg *config.Config, store *db.Store, svc *services.Services, cache *utils.Cache, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middleware.UserIDHeader)
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, sessionStore))
	r.Use(middleware.LoadUser(store))
	// 浏览量计数不清空缓存
	r.Use(middleware.PurgeCacheOnWrite(cache, viewRoute))

	RegisterRoutes(r, svc, cache, log)
	return r
}

func RegisterRoutes(r *gin.Engine, svc *services.Services, cache *utils.Cache, log logrus.FieldLogger) {
	// Handlers
	authHandler := handlers.NewAuthHandler(svc)
	communityHandler := handlers.NewCommunityHandler(svc, cache, log)
	postHandler := handlers.NewPostHandler(svc, cache, log)
	commentHandler := handlers.NewCommentHandler(svc, log)
	voteHandler := handlers.NewVoteHandler(svc)
	linkFlairHandler := handlers.NewLinkFlairHandler(svc)
	userHandler := handlers.NewUserHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc, log)

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/ping", handlers.Ping)

	// 公共路由 (Public Routes)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/communities", communityHandler.List)
	api.GET("/communities/:id", communityHandler.Get)
	api.GET("/communities/:id/posts", communityHandler.Posts)

	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Detail)
	api.GET("/posts/:id/comments", postHandler.Comments)
	api.PUT("/posts/:id/view", postHandler.View)
	api.GET("/search", postHandler.Search)

	api.GET("/comments", commentHandler.List)
	api.GET("/comments/:id", commentHandler.Get)

	api.GET("/linkflairs", linkFlairHandler.List)

	api.GET("/users/:id", userHandler.Get)
	api.GET("/users/:id/content", userHandler.Content)

	// 投票：未登录时使用请求体中的 userId
	api.POST("/posts/:id/vote", voteHandler.VotePost)
	api.POST("/comments/:id/vote", voteHandler.VoteComment)

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/me", authHandler.Me)

		authorized.POST("/communities", communityHandler.Create)
		authorized.PUT("/communities/:id", communityHandler.Update)
		authorized.DELETE("/communities/:id", communityHandler.Delete)
		authorized.POST("/communities/:id/join", communityHandler.Join)
		authorized.POST("/communities/:id/leave", communityHandler.Leave)

		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:id", postHandler.Update)
		authorized.DELETE("/posts/:id", postHandler.Delete)

		authorized.POST("/comments", commentHandler.Create)
		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)

		authorized.POST("/linkflairs", linkFlairHandler.Create)
	}

	// 管理员路由 (Admin Routes)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id", adminHandler.UpdateUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.POST("/dedupe", adminHandler.Dedupe)
	}
}
