// Package admin owns the node's operator-facing HTTP surface: health,
// metrics, and session inspection. It reads engine state but never sits on
// the datagram path.
package admin

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/netssd/netssd/internal/engine"
	"github.com/netssd/netssd/internal/observability"
)

type Server struct {
	Node     string
	Addr     string
	Appeared time.Time

	engine *engine.Engine
	router *gin.Engine
}

func New(node, addr string, eng *engine.Engine, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestTelemetry(node, log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Node:     node,
		Addr:     addr,
		Appeared: time.Now(),
		engine:   eng,
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.Appeared).String(),
			"node":     s.Node,
			"protocol": s.engine.ProtocolNumber(),
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"uptime": time.Since(s.Appeared).String(),
			"node":   s.Node,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.engine.Stats())
	})

	s.router.GET("/sessions", func(c *gin.Context) {
		sessions := s.engine.Sessions()
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].Remote < sessions[j].Remote
		})
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	})

	s.router.POST("/sessions/:remote/actions/close", func(c *gin.Context) {
		remote, err := engine.ParseEndpoint(c.Param("remote"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := s.engine.Close(remote); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, engine.ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "remote": remote.String()})
	})
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
