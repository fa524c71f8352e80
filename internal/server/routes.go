package server

import (
	"net/http"
	"time"

	"github.com/danmuck/adbtrace/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	if s.Config.Server.Token != "" {
		s.router.POST("/decode", auth.Require(auth.StaticToken{Token: s.Config.Server.Token}), s.handleDecode)
	} else {
		s.router.POST("/decode", s.handleDecode)
	}
}
