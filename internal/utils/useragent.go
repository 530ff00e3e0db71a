package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// ClientInfo is the device summary attached to request logs
type ClientInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

// ParseUserAgent summarises a User-Agent header
func ParseUserAgent(userAgent string) ClientInfo {
	if strings.TrimSpace(userAgent) == "" {
		return ClientInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)
	info := ClientInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Browser:    "Unknown",
		IsBot:      parser.Bot(),
	}

	if os := parser.OSInfo(); os.Name != "" {
		info.OS = strings.TrimSpace(os.Name + " " + os.Version)
	}
	if name, version := parser.Browser(); name != "" {
		info.Browser = strings.TrimSpace(name + " " + version)
	}

	if parser.Mobile() {
		info.DeviceType = "mobile"
		lower := strings.ToLower(userAgent)
		for _, marker := range tabletMarkers {
			if strings.Contains(lower, marker) {
				info.DeviceType = "tablet"
				break
			}
		}
	}

	return info
}
