package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/service"
)

// LimitPolicy binds a rate-limited route to a counter key template and a
// named attempt limit. Templates interpolate `{field}` placeholders from
// path parameters, query parameters and the JSON request body.
type LimitPolicy struct {
	KeyTemplate string
	LimitName   string
}

// DefaultRateLimitTable is the static route → policy table evaluated by the
// ingress gate. Routes not listed here are never rate-limited.
func DefaultRateLimitTable() map[string]LimitPolicy {
	return map[string]LimitPolicy{
		"POST /auth/signin":          {KeyTemplate: "signin:{email}", LimitName: "login-attempts"},
		"GET /auth/otp/send":         {KeyTemplate: "otp:{email}", LimitName: "otp-attempts"},
		"POST /auth/otp/verify":      {KeyTemplate: "otp_verify:{email}", LimitName: "refresh-attempts"},
		"POST /auth/refresh":         {KeyTemplate: "refresh:{refreshToken}", LimitName: "refresh-attempts"},
		"POST /auth/forgot-password": {KeyTemplate: "forgot-password:{email}", LimitName: "refresh-attempts"},
	}
}

// RateLimitGate is the single ingress interceptor consulting the route
// table before a flow executes. Denials return 429 with a structured body.
func RateLimitGate(limiter *service.RateLimiter, limits map[string]int, table map[string]LimitPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy, limited := table[c.Request.Method+" "+c.FullPath()]
		if !limited {
			c.Next()
			return
		}

		limit, known := limits[policy.LimitName]
		if !known {
			log.Printf("no limit configured for policy %q, skipping rate check", policy.LimitName)
			c.Next()
			return
		}

		key := resolveKey(policy.KeyTemplate, c)

		allowed, err := limiter.TryAcquire(c.Request.Context(), key, limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !allowed {
			abortWithError(c, core.NewError(core.KindTooManyAttempts))
			return
		}

		c.Next()
	}
}

// resolveKey interpolates template placeholders from the request. It never
// fails: an unresolvable placeholder is left verbatim, degrading to a
// coarser (shared) counter key rather than crashing the request.
func resolveKey(template string, c *gin.Context) string {
	resolved := template

	for _, p := range c.Params {
		resolved = strings.ReplaceAll(resolved, "{"+p.Key+"}", p.Value)
	}
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			resolved = strings.ReplaceAll(resolved, "{"+name+"}", values[0])
		}
	}

	if strings.Contains(resolved, "{") {
		for name, value := range bodyFields(c) {
			resolved = strings.ReplaceAll(resolved, "{"+name+"}", value)
		}
	}

	return resolved
}

// bodyFields reads the JSON body's top-level string and number fields and
// restores the body so the handler can bind it again.
func bodyFields(c *gin.Context) map[string]string {
	raw, err := c.GetRawData()
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}

	fields := make(map[string]string, len(body))
	for name, value := range body {
		switch v := value.(type) {
		case string:
			fields[name] = v
		case float64:
			fields[name] = fmt.Sprintf("%v", v)
		}
	}
	return fields
}
