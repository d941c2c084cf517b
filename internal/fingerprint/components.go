package fingerprint

import (
	"encoding/json"
	"strconv"
)

// Components is the typed form of the open-ended component map submitted by
// the client collector. Recognized keys are extracted into named fields;
// the full map is preserved verbatim in Raw so storage round-trips without
// loss.
type Components struct {
	Raw string

	UserAgent           string
	Platform            string
	ScreenResolution    string
	Timezone            string
	Language            string
	WebglSupported      bool
	WebglRenderer       string
	WebglVendor         string
	CPUCores            string
	DeviceMemory        string
	HardwareConcurrency string
	TouchSupport        string
	ColorDepth          string
	PixelRatio          string
	Fonts               string
	Audio               string
	Canvas              string

	BotProbability float64
	BotType        string
	IsBot          bool
}

// Parse extracts the fixed component set from a raw client map. Missing or
// mistyped entries default to the zero value; numeric JSON values are
// normalized to their decimal string form so hardware fields compare
// stably across submissions.
func Parse(raw map[string]any) Components {
	encoded, err := json.Marshal(raw)
	if err != nil {
		encoded = []byte("{}")
	}

	c := Components{
		Raw:                 string(encoded),
		UserAgent:           stringValue(raw, "userAgent"),
		Platform:            stringValue(raw, "platform"),
		ScreenResolution:    stringValue(raw, "screenResolution"),
		Timezone:            stringValue(raw, "timezone"),
		Language:            stringValue(raw, "language"),
		WebglSupported:      boolValue(raw, "webglSupported"),
		WebglRenderer:       stringValue(raw, "webglRenderer"),
		WebglVendor:         stringValue(raw, "webglVendor"),
		CPUCores:            stringValue(raw, "cpuCores"),
		DeviceMemory:        stringValue(raw, "deviceMemory"),
		HardwareConcurrency: stringValue(raw, "hardwareConcurrency"),
		TouchSupport:        stringValue(raw, "touchSupport"),
		ColorDepth:          stringValue(raw, "colorDepth"),
		PixelRatio:          stringValue(raw, "pixelRatio"),
		Fonts:               stringValue(raw, "fonts"),
		Audio:               stringValue(raw, "audio"),
		Canvas:              stringValue(raw, "canvas"),
		BotType:             stringValue(raw, "botType"),
		IsBot:               boolValue(raw, "isBot"),
	}

	if prob, ok := raw["botProbability"].(float64); ok {
		c.BotProbability = prob
	}

	return c
}

func stringValue(m map[string]any, key string) string {
	val, ok := m[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func boolValue(m map[string]any, key string) bool {
	b, ok := m[key].(bool)
	return ok && b
}
