package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint on router. stream serves the
// WebSocket endpoint and may be nil.
func (h *Handlers) RegisterRoutes(router gin.IRouter, stream gin.HandlerFunc) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	// Run configurations
	router.GET("/configurations", h.ListConfigurations)
	router.POST("/configurations", h.CreateConfiguration)
	router.GET("/configurations/:id", h.GetConfiguration)
	router.PUT("/configurations/:id", h.UpdateConfiguration)
	router.DELETE("/configurations/:id", h.DeleteConfiguration)
	router.POST("/configurations/:id/run", h.RunConfiguration)

	// Views
	router.GET("/tree", h.Tree)
	router.POST("/refresh", h.Refresh)
	router.GET("/editor", h.OpenEditor)
	router.POST("/editor/messages", h.EditorMessage)

	// Terminals
	router.GET("/sessions", h.ListSessions)
	router.GET("/terminals", h.ListTerminals)
	router.GET("/terminals/:id/output", h.TerminalOutput)
	router.POST("/terminals/:id/input", h.TerminalInput)
	router.POST("/terminals/:id/resize", h.ResizeTerminal)
	router.DELETE("/terminals/:id", h.KillTerminal)

	if stream != nil {
		router.GET("/stream", stream)
	}
}
