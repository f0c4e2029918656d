// internal/middleware/trusted_hosts.go
package middleware

import (
	"net"
	"net/http"
	"strings"

	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// TrustedHostsMiddleware rejects requests whose Host header is not listed.
// Entries may use a leading "*." wildcard; "*" disables the check.
func TrustedHostsMiddleware(hosts []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hostAllowed(hosts, c.Request.Host) {
			response.Error(c, http.StatusBadRequest, "invalid host header", nil)
			return
		}
		c.Next()
	}
}

func hostAllowed(hosts []string, hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	for _, pattern := range hosts {
		pattern = strings.ToLower(pattern)
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "*."):
			if strings.HasSuffix(host, pattern[1:]) {
				return true
			}
		case pattern == host:
			return true
		}
	}
	return false
}
