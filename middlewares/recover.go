package middlewares

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/log"
)

// brokenPipe reports whether the panic value is a write to a client that went away,
// which happens when a streaming assistant reply outlives its browser tab.
func brokenPipe(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		msg := strings.ToLower(sysErr.Error())
		return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
	}
	return false
}

// GinRecovery turns panics into a 500 JSON answer and logs the stack.
func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if brokenPipe(v) {
				log.L().Warn("client connection lost",
					zap.Any("error", v),
					zap.String("path", c.Request.URL.Path),
				)
				c.Abort()
				return
			}
			log.L().Error("panic recovered",
				zap.Any("error", v),
				zap.ByteString("stack", debug.Stack()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Uint("user_id", c.GetUint(ContextUserID)),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}()
		c.Next()
	}
}
