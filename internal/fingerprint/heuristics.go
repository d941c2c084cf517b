package fingerprint

import "strings"

// Substrings that identify crawlers and named search-engine bots. Matched
// case-insensitively against the user agent.
var crawlerMarkers = []string{
	"bot",
	"crawler",
	"spider",
	"slurp",
	"googlebot",
	"bingbot",
	"baiduspider",
	"yandexbot",
	"duckduckbot",
}

// Markers left behind by headless and automation browsers.
var headlessMarkers = []string{
	"headlesschrome",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
}

// SuspiciousPattern applies the stateless bot-heuristic rule set to a record
// snapshot. It reports whether any rule fired and the name of the first
// matching rule for the audit trail.
func SuspiciousPattern(r *Record) (bool, string) {
	ua := strings.ToLower(r.UserAgent)

	if ua == "" {
		return true, "empty-user-agent"
	}
	for _, marker := range crawlerMarkers {
		if strings.Contains(ua, marker) {
			return true, "crawler-user-agent"
		}
	}
	for _, marker := range headlessMarkers {
		if strings.Contains(ua, marker) {
			return true, "headless-browser"
		}
	}

	// Software rasterizers and generic cloud vendors mean the WebGL stack
	// is emulated, which real browsers on real hardware never report.
	if strings.Contains(r.WebglRenderer, "SwiftShader") ||
		strings.Contains(r.WebglRenderer, "llvmpipe") ||
		r.WebglVendor == "Google Inc." ||
		r.WebglVendor == "Brian Paul" {
		return true, "software-webgl"
	}

	// Placeholder hardware values left at their unconfigured defaults by
	// minimal virtual environments.
	if r.CPUCores == "1" || r.DeviceMemory == "undefined" || r.HardwareConcurrency == "0" {
		return true, "sentinel-hardware"
	}

	if r.Canvas == "" || r.Audio == "" {
		return true, "missing-canvas-audio"
	}

	return false, ""
}
