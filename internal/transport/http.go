package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/events"
)

// Processor is the engine's command-dispatch surface, kept as an
// interface here so transport never imports engine (engine already
// imports transport for CommandPayload).
type Processor interface {
	Process(CommandPayload) []events.Event
}

// Publisher drains a processed command's events to the market-data sink.
type Publisher interface {
	PublishAll([]events.Event)
}

var structValidator = validator.New()

// NewRouter builds the gin engine exposing /health and POST /commands,
// following cmd/ws/main.go's newGinEngine/setupRoutes shape.
func NewRouter(engine Processor, publisher Publisher, logger *zap.Logger, jwtSecret []byte, ratePerSecond int64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	commands := r.Group("/commands")
	commands.Use(RateLimitMiddleware(ratePerSecond))
	commands.Use(AuthMiddleware(jwtSecret, logger))
	commands.POST("", func(c *gin.Context) {
		var payload CommandPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			logger.Debug("malformed command payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		if err := structValidator.Struct(payload); err != nil {
			logger.Debug("command payload failed validation", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		evs := engine.Process(payload)
		if publisher != nil {
			publisher.PublishAll(evs)
		}
		c.JSON(http.StatusOK, gin.H{"events": evs})
	})

	return r
}
