package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSPolicy lists what a function advertises to cross-origin callers.
// Every origin is allowed.
type CORSPolicy struct {
	Methods      []string
	AllowHeaders []string
}

const corsMaxAge = "86400"

// Headers returns the cross-origin headers attached to every response.
func (p CORSPolicy) Headers() map[string]string {
	methods := "*"
	if len(p.Methods) > 0 {
		methods = strings.Join(p.Methods, ", ")
	}
	headers := "*"
	if len(p.AllowHeaders) > 0 {
		headers = strings.Join(p.AllowHeaders, ", ")
	}
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": methods,
		"Access-Control-Allow-Headers": headers,
		"Access-Control-Max-Age":       corsMaxAge,
	}
}

// Middleware writes the CORS headers and answers preflight requests with 204.
func (p CORSPolicy) Middleware() gin.HandlerFunc {
	headers := p.Headers()
	return func(c *gin.Context) {
		for key, value := range headers {
			c.Header(key, value)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
