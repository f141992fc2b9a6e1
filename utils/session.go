package utils

import (
	"fmt"

	ua "github.com/mileusna/useragent"
)

// ParseUserAgent extracts useful information from a User-Agent string
func ParseUserAgent(userAgent string) (browser, os, device string) {
	if userAgent == "" {
		return "Unknown Browser", "Unknown OS", "Desktop"
	}

	parsedUA := ua.Parse(userAgent)

	browser = parsedUA.Name
	if browser == "" {
		browser = "Unknown Browser"
	}

	os = parsedUA.OS
	if os == "" {
		os = "Unknown OS"
	}

	device = "Desktop"
	if parsedUA.Mobile {
		device = "Mobile"
	} else if parsedUA.Tablet {
		device = "Tablet"
	}

	return browser, os, device
}

// DescribeDevice renders a display name for a session, e.g. "Chrome on
// Linux (Desktop)".
func DescribeDevice(userAgent string) string {
	browser, os, device := ParseUserAgent(userAgent)
	return fmt.Sprintf("%s on %s (%s)", browser, os, device)
}
