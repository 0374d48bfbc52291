package http

import (
	"errors"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/domain/commands"
	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
	"github.com/mansukim1125/run-configurations/internal/providers/terminal"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Terminals is the terminal host surface exposed over HTTP
type Terminals interface {
	List() []terminal.SessionInfo
	Read(terminalID string) ([]byte, error)
	Write(terminalID string, input []byte) error
	Resize(terminalID string, cols, rows int) error
	Kill(terminalID string) error
}

// Sessions reports which terminal belongs to which configuration
type Sessions interface {
	Sessions() map[string]string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	commands  *commands.Service
	store     *runconfig.Store
	editor    *runconfig.Editor
	sessions  Sessions
	terminals Terminals
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	commands *commands.Service,
	store *runconfig.Store,
	editor *runconfig.Editor,
	sessions Sessions,
	terminals Terminals,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		commands:  commands,
		store:     store,
		editor:    editor,
		sessions:  sessions,
		terminals: terminals,
		metrics:   metrics,
		logger:    logger,
	}
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "run-configurations",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":   "healthy",
		"sessions": len(h.sessions.Sessions()),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

// respondError maps domain errors to status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var confirm *commands.ConfirmationError
	switch {
	case errors.As(err, &confirm):
		status = http.StatusConflict
		body["prompt"] = confirm.Prompt
	case errors.Is(err, runconfig.ErrNotFound), errors.Is(err, terminal.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, terminal.ErrSessionClosed):
		status = http.StatusConflict
	case errors.Is(err, runconfig.ErrUnknownMessage), errors.Is(err, doublestar.ErrBadPattern):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
