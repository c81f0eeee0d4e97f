// Package transport serves the scanner over HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/sheet-omr/internal/config"
	"github.com/ironsheep/sheet-omr/internal/detection"
	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
	"github.com/ironsheep/sheet-omr/internal/logger"
	"github.com/ironsheep/sheet-omr/internal/scanner"
)

// Version is reported by /health. It is set by main.
var Version = "0.1.0"

// uploadField is the multipart field carrying the page image.
const uploadField = "image"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// NewHandler returns the HTTP API:
//
//	GET  /health      liveness and correlation backend
//	POST /scan        multipart "image" (+ optional "order"), returns the scan result
//	POST /preprocess  multipart "image", returns the binarized page as PNG
//
// Uploads never get annotated; the temp file they are scanned from is removed
// before the response is sent.
func NewHandler(sc *scanner.Scanner, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxUploadBytes),
	)

	r.GET("/health", healthCheck)
	r.POST("/scan", scanPage(sc, cfg))
	r.POST("/preprocess", preprocessPage(sc))

	return r
}

func scanPage(sc *scanner.Scanner, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		opts := sc.Options()
		opts.Annotate = false
		if order := c.DefaultPostForm("order", c.Query("order")); order != "" {
			if order != config.NoteOrderRow && order != config.NoteOrderColumn {
				respondError(c, apperrors.NewValidationError(
					fmt.Sprintf("order must be %q or %q", config.NoteOrderRow, config.NoteOrderColumn), nil))
				return
			}
			opts.NoteOrder = order
		}

		path, cleanup, err := saveUpload(c)
		if err != nil {
			respondError(c, err)
			return
		}
		defer cleanup()

		startTime := time.Now()
		res, err := sc.With(opts).Scan(ctx, path)
		if err != nil {
			respondError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"notes":              len(res.Notes),
			"skipped":            res.Skipped,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Scan request completed")

		c.JSON(http.StatusOK, res)
	}
}

func preprocessPage(sc *scanner.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, cleanup, err := saveUpload(c)
		if err != nil {
			respondError(c, err)
			return
		}
		defer cleanup()

		out, err := sc.Preprocess(path)
		if err != nil {
			respondError(c, err)
			return
		}

		data, err := os.ReadFile(out)
		if err != nil {
			respondError(c, apperrors.NewInternalError("cannot read binarized page", err))
			return
		}
		c.Data(http.StatusOK, "image/png", data)
	}
}

// saveUpload copies the uploaded page to a temp file. The ".png" suffix makes
// any write-back PNG-encoded; decoding sniffs the content so JPEG and GIF
// uploads still load.
func saveUpload(c *gin.Context) (string, func(), error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, &apperrors.AppError{
				Type:       apperrors.ErrorTypeValidation,
				Message:    fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
				StatusCode: http.StatusRequestEntityTooLarge,
				Cause:      err,
			}
		}
		return "", nil, apperrors.NewValidationError(fmt.Sprintf("multipart field %q is required", uploadField), err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", nil, apperrors.NewValidationError("cannot read upload", err)
	}
	defer src.Close()

	return writeTemp(src)
}

func writeTemp(src io.Reader) (string, func(), error) {
	tmp, err := os.CreateTemp("", "sheet-omr-*.png")
	if err != nil {
		return "", nil, apperrors.NewInternalError("cannot create temp file", err)
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", tmp.Name()).Warn("Failed to remove upload")
		}
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, apperrors.NewInternalError("cannot store upload", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, apperrors.NewInternalError("cannot store upload", err)
	}
	return tmp.Name(), cleanup, nil
}

func healthCheck(c *gin.Context) {
	backend := detection.InitBackend()
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"backend": backend.Name,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Info("Request handled")
	}
}

// determineStatusCode checks for context errors first: a timeout surfaces
// wrapped in whichever pipeline stage it interrupted.
func determineStatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return apperrors.GetStatusCode(err)
	}
}

func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)
	errType := apperrors.TypeOf(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"type":        errType,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Type:    string(errType),
		Message: err.Error(),
	})
}
