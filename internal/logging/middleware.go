package logging

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog logs one line per request after the handler chain has run.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	logger = OrNop(logger).Named("http")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("time-cost", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn(path, fields...)
			return
		}
		logger.Info(path, fields...)
	}
}

// Recovery turns a panic into a 500 and logs it with the stack.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	logger = OrNop(logger).Named("http")
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := []zap.Field{
					zap.String("router", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("stack", string(debug.Stack())),
				}
				if err, ok := rec.(error); ok {
					fields = append(fields, zap.Error(err))
				} else {
					fields = append(fields, zap.String("panic_value", fmt.Sprintf("%v", rec)))
				}
				logger.Error("Recovered from panic", fields...)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  "INTERNAL_ERROR",
				})
			}
		}()
		c.Next()
	}
}
