package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"go-image-press/internal/config"
	apperrors "go-image-press/internal/errors"
	"go-image-press/internal/logger"
	"go-image-press/internal/metrics"
	"go-image-press/internal/service"
	"go-image-press/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewHandler wires the HTTP surface. The compress route never runs any form
// binding itself; the raw multipart stream reaches the upload store
// unconsumed.
func NewHandler(svc service.CompressService, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestSizeLimiter(cfg.MaxUploadSize),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/api/compress", compressImage(svc, cfg))

	return r
}

func compressImage(svc service.CompressService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// Client disconnect and the request deadline both cancel in-flight work.
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing image compression request")

		result, err := svc.CompressUpload(ctx, c.Request)
		if err != nil {
			respondFailure(c, err)
			return
		}

		duration := time.Since(startTime)
		metrics.CompressRequests.WithLabelValues("success").Inc()
		metrics.BytesIn.Add(float64(result.OriginalSize))
		metrics.BytesOut.Add(float64(len(result.CompressedBytes)))
		metrics.CompressDuration.Observe(duration.Seconds())

		logger.WithFields(logrus.Fields{
			"original_bytes":     result.OriginalSize,
			"compressed_bytes":   len(result.CompressedBytes),
			"processing_time_ms": duration.Milliseconds(),
			"ip":                 c.ClientIP(),
		}).Info("Image compression completed successfully")

		c.JSON(http.StatusOK, models.CompressResponse{
			Success: true,
			Data:    base64.StdEncoding.EncodeToString(result.CompressedBytes),
			Extra:   result.SourcePath,
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Leave headroom for the multipart framing around the file payload.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+64*1024)
		c.Next()
	}
}

// respondFailure converts any pipeline error into the structured failure
// body. Handled failures keep the 200 status on purpose; callers branch on
// the success flag, not the transport status.
func respondFailure(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	message := apperrors.MessageOf(err)

	metrics.CompressRequests.WithLabelValues("failure").Inc()
	metrics.CompressFailures.WithLabelValues(string(kind)).Inc()

	logger.WithError(err).WithFields(logrus.Fields{
		"kind": string(kind),
		"path": c.Request.URL.Path,
		"ip":   c.ClientIP(),
	}).Error("Image compression request failed")

	c.JSON(http.StatusOK, models.CompressResponse{
		Success: false,
		Error: &models.ErrorBody{
			Kind:    string(kind),
			Message: message,
		},
	})
}
