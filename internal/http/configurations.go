package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
	"github.com/mansukim1125/run-configurations/internal/utils"
)

// ListConfigurations lists stored configurations, optionally filtered by
// a glob on the name (?name=build*)
func (h *Handlers) ListConfigurations(c *gin.Context) {
	pattern := c.Query("name")
	if err := utils.ValidatePattern(pattern); err != nil {
		badRequest(c, err)
		return
	}

	configs, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	configs, err = runconfig.Filter(configs, pattern)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configurations": configs,
		"count":          len(configs),
	})
}

// GetConfiguration returns one configuration
func (h *Handlers) GetConfiguration(c *gin.Context) {
	configID := c.Param("id")
	if err := utils.ValidateID(configID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	cfg, ok, err := h.store.GetByID(c.Request.Context(), configID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		h.respondError(c, fmt.Errorf("%w: %s", runconfig.ErrNotFound, configID))
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// CreateConfiguration builds a configuration from a DTO and saves it. A
// DTO carrying an existing id replaces that configuration.
func (h *Handlers) CreateConfiguration(c *gin.Context) {
	var dto runconfig.DTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}

	cfg := runconfig.New(dto)
	if err := h.store.Save(c.Request.Context(), cfg); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cfg)
}

// UpdateConfiguration replaces the configuration stored under the path id
func (h *Handlers) UpdateConfiguration(c *gin.Context) {
	configID := c.Param("id")
	if err := utils.ValidateID(configID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	var dto runconfig.DTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	dto.ID = configID

	cfg := runconfig.New(dto)
	if err := h.store.Save(c.Request.Context(), cfg); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// DeleteConfiguration deletes after confirmation (?confirm=true). Without
// it the response is 409 with the prompt to show.
func (h *Handlers) DeleteConfiguration(c *gin.Context) {
	configID := c.Param("id")
	if err := utils.ValidateID(configID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	confirmed := c.Query("confirm") == "true"
	if err := h.commands.Delete(c.Request.Context(), configID, confirmed); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      configID,
	})
}

// RunConfiguration executes a configuration in its terminal
func (h *Handlers) RunConfiguration(c *gin.Context) {
	configID := c.Param("id")
	if err := utils.ValidateID(configID, "id"); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.commands.Run(c.Request.Context(), configID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          configID,
		"terminal_id": h.sessions.Sessions()[configID],
	})
}

// Tree returns the sidebar items
func (h *Handlers) Tree(c *gin.Context) {
	items, err := runconfig.Tree(c.Request.Context(), h.store)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Refresh asks connected views to reload
func (h *Handlers) Refresh(c *gin.Context) {
	h.commands.Refresh()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// OpenEditor returns the load message for ?id=, or for a new configuration
func (h *Handlers) OpenEditor(c *gin.Context) {
	configID := c.Query("id")
	if configID != "" {
		if err := utils.ValidateID(configID, "id"); err != nil {
			badRequest(c, err)
			return
		}
	}

	var (
		msg runconfig.EditorMessage
		err error
	)
	if configID == "" {
		msg, err = h.commands.Add(c.Request.Context())
	} else {
		msg, err = h.commands.Edit(c.Request.Context(), configID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// EditorMessage handles save/cancel posted by the form
func (h *Handlers) EditorMessage(c *gin.Context) {
	var msg runconfig.FormMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.editor.Handle(c.Request.Context(), msg)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
