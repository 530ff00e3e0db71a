package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var privateRanges = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7"} {
		_, subnet, _ := net.ParseCIDR(cidr)
		nets = append(nets, subnet)
	}
	return nets
}()

// GetRealIP extracts the client address behind reverse proxies.
//
// Priority order:
//  1. X-Real-IP when it is a public address
//  2. the first public address in X-Forwarded-For
//  3. the first valid address in X-Forwarded-For
//  4. gin's ClientIP
func GetRealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		if ip := net.ParseIP(realIP); ip != nil && !IsPrivateIP(ip) {
			return realIP
		}
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		var first string
		for _, part := range strings.Split(forwarded, ",") {
			candidate := strings.TrimSpace(part)
			ip := net.ParseIP(candidate)
			if ip == nil {
				continue
			}
			if first == "" {
				first = candidate
			}
			if !IsPrivateIP(ip) && !ip.IsLoopback() {
				return candidate
			}
		}
		if first != "" {
			return first
		}
	}

	return c.ClientIP()
}

// IsPrivateIP reports whether ip lies in a private range
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, subnet := range privateRanges {
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}
