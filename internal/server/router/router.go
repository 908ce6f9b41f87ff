package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/server/handlers"
	"github.com/mamadbah2/shopsim/internal/server/views"
)

// New wires the Gin engine with the page routes, the JSON API and middlewares.
func New(shop *handlers.ShopHandler, api *handlers.APIHandler, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", shop.Index)
	r.GET("/products/:id", shop.Details)
	r.POST("/intents", shop.Intent)
	r.POST("/checkout", shop.BeginCheckout)
	r.POST("/checkout/confirm", shop.ConfirmCheckout)
	r.POST("/checkout/cancel", shop.CancelCheckout)

	apiGroup := r.Group("/api")
	apiGroup.GET("/catalog", api.Catalog)
	apiGroup.GET("/cart", api.Cart)
	apiGroup.POST("/cart/intents", api.Intent)
	apiGroup.POST("/checkout", api.BeginCheckout)
	apiGroup.POST("/checkout/confirm", api.ConfirmCheckout)
	apiGroup.POST("/checkout/cancel", api.CancelCheckout)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("router initialized")

	return r, nil
}

// zapLoggerMiddleware logs one line per request: 5xx at error, 4xx at warn,
// the rest at debug.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Debug("request completed", fields...)
		}
	}
}
