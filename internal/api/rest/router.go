package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
)

const readHeaderTimeout = 5 * time.Second

type config interface {
	Addr() string
}

// NewRouter wires the public API. Every origin is allowed.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(requestID(), accessLog(), recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/", h.root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/rates/latest", h.latestRates)
		api.GET("/rates/history", h.history)
		api.GET("/rates/report", h.report)
		api.POST("/rates/update", h.triggerIngestion)
		api.GET("/stats", h.stats)
		api.POST("/convert", h.convert)
		api.GET("/currencies", h.currencies)
	}
	return router
}

type Server struct {
	srv *http.Server
}

func NewServer(config config, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              config.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http serve")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	logger.Info("http server stopped")
	return nil
}
