package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Routes is implemented by every service handler
type Routes interface {
	Register(rg *gin.RouterGroup)
}

// ReadyFunc reports whether a dependency is ready to serve
type ReadyFunc func() error

// SetupRoutes sets up HTTP routes
func SetupRoutes(router *gin.Engine, ready ReadyFunc, routes ...Routes) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", healthCheck)
	router.GET("/ready", readinessCheck(ready))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	for _, r := range routes {
		r.Register(v1)
	}
}

// healthCheck handles health check requests
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func readinessCheck(ready ReadyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			if err := ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"time":   time.Now().Unix(),
		})
	}
}

var statusForCode = map[string]int{
	models.CodeInvalidInput: http.StatusBadRequest,
	models.CodeNotFound:     http.StatusNotFound,
	models.CodeEmptyCart:    http.StatusConflict,
	models.CodePersistence:  http.StatusInternalServerError,
	models.CodeUnavailable:  http.StatusBadGateway,
	models.CodeInternal:     http.StatusInternalServerError,
}

// respondError writes {"error","code"} with the status matching the error kind
func respondError(c *gin.Context, err error) {
	code := models.ErrorCode(err)
	status := statusForCode[code]

	if status >= http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", code),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, fmt.Errorf("%w: invalid request body: %v", models.ErrInvalidInput, err))
		return false
	}
	return true
}

// param returns a required path parameter
func param(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		respondError(c, fmt.Errorf("%w: %s is required", models.ErrInvalidInput, name))
		return "", false
	}
	return v, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
