package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mansukim1125/run-configurations/internal/utils"
)

// ResizeRequest is the body of POST /terminals/:id/resize
type ResizeRequest struct {
	Cols int `json:"cols" binding:"required"`
	Rows int `json:"rows" binding:"required"`
}

// InputRequest is the body of POST /terminals/:id/input
type InputRequest struct {
	Text    string `json:"text"`
	Newline bool   `json:"newline"`
}

// ListTerminals lists live and exited terminals
func (h *Handlers) ListTerminals(c *gin.Context) {
	terminals := h.terminals.List()
	c.JSON(http.StatusOK, gin.H{
		"terminals": terminals,
		"count":     len(terminals),
	})
}

// ListSessions maps configuration ids to their terminals
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.Sessions()})
}

// TerminalOutput drains the terminal's buffered output as raw bytes
func (h *Handlers) TerminalOutput(c *gin.Context) {
	terminalID := c.Param("id")
	if err := utils.ValidateID(terminalID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	out, err := h.terminals.Read(terminalID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", out)
}

// TerminalInput writes text to a terminal
func (h *Handlers) TerminalInput(c *gin.Context) {
	terminalID := c.Param("id")
	if err := utils.ValidateID(terminalID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	text := req.Text
	if req.Newline {
		text += "\r"
	}
	if err := h.terminals.Write(terminalID, []byte(text)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResizeTerminal changes terminal dimensions
func (h *Handlers) ResizeTerminal(c *gin.Context) {
	terminalID := c.Param("id")
	if err := utils.ValidateID(terminalID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateSize(req.Cols, req.Rows); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.terminals.Resize(terminalID, req.Cols, req.Rows); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// KillTerminal terminates a terminal
func (h *Handlers) KillTerminal(c *gin.Context) {
	terminalID := c.Param("id")
	if err := utils.ValidateID(terminalID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.terminals.Kill(terminalID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      terminalID,
	})
}
