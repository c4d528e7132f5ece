package web

import (
	"context"
	"net/http"

	"campus-agent/chat"
	"campus-agent/config"
	"campus-agent/faq"
	"campus-agent/knowledge"
	"campus-agent/web/handlers"
	"campus-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	config    *config.Config
	chat      *chat.Service
	knowledge *knowledge.Service
	faq       *faq.Matcher
}

func NewServer(chatService *chat.Service, ks *knowledge.Service, matcher *faq.Matcher, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ActorMiddleware())

	server := &Server{
		router:    router,
		logger:    logger,
		config:    cfg,
		chat:      chatService,
		knowledge: ks,
		faq:       matcher,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	chatHandler := handlers.NewChatHandler(s.chat, s.logger)
	knowledgeHandler := handlers.NewKnowledgeHandler(s.knowledge, s.logger)
	faqHandler := handlers.NewFAQHandler(s.faq)

	api := s.router.Group("/api")

	api.POST("/chat", chatHandler.Create)
	api.GET("/chat/list", chatHandler.List)
	api.GET("/chat/:id", chatHandler.Get)
	api.POST("/chat/:id/message", chatHandler.SendMessage)
	api.PUT("/chat/:id/rename", chatHandler.Rename)
	api.DELETE("/chat/:id", chatHandler.Delete)

	api.GET("/knowledge/search", knowledgeHandler.Search)
	api.GET("/knowledge/categories", knowledgeHandler.Categories)
	api.GET("/knowledge/category/:name", knowledgeHandler.ByCategory)
	api.GET("/knowledge/context", knowledgeHandler.TenantSummary)

	admin := api.Group("/admin")
	admin.POST("/knowledge", knowledgeHandler.Create)
	admin.PUT("/knowledge/:id", knowledgeHandler.Update)
	admin.DELETE("/knowledge/:id", knowledgeHandler.Delete)

	api.GET("/faq/search", faqHandler.Search)
	api.GET("/faq/matches", faqHandler.Matches)
	api.GET("/faq/categories", faqHandler.Categories)
	api.GET("/faq/category/:name", faqHandler.ByCategory)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
