package fingerprint

import (
	"encoding/json"
	"testing"
)

func TestParseExtractsKnownKeys(t *testing.T) {
	c := Parse(map[string]any{
		"userAgent":        "Mozilla/5.0 (X11; Linux x86_64)",
		"platform":         "Linux x86_64",
		"screenResolution": "1920x1080",
		"timezone":         "Europe/Berlin",
		"language":         "de-DE",
		"webglSupported":   true,
		"webglRenderer":    "ANGLE (NVIDIA)",
		"canvas":           "c-hash",
		"audio":            "a-hash",
		"botProbability":   0.42,
		"botType":          "datacenter",
		"isBot":            false,
	})

	if c.UserAgent != "Mozilla/5.0 (X11; Linux x86_64)" {
		t.Fatalf("userAgent = %q", c.UserAgent)
	}
	if c.Platform != "Linux x86_64" || c.ScreenResolution != "1920x1080" {
		t.Fatalf("hardware fields = %q / %q", c.Platform, c.ScreenResolution)
	}
	if !c.WebglSupported || c.WebglRenderer != "ANGLE (NVIDIA)" {
		t.Fatalf("webgl fields = %v / %q", c.WebglSupported, c.WebglRenderer)
	}
	if c.Canvas != "c-hash" || c.Audio != "a-hash" {
		t.Fatalf("canvas/audio = %q / %q", c.Canvas, c.Audio)
	}
	if c.BotProbability != 0.42 || c.BotType != "datacenter" || c.IsBot {
		t.Fatalf("bot fields = %v / %q / %v", c.BotProbability, c.BotType, c.IsBot)
	}
}

func TestParseNormalizesNumericValues(t *testing.T) {
	// JSON numbers decode to float64; hardware fields must compare stably
	// as strings across submissions.
	c := Parse(map[string]any{
		"cpuCores":            float64(8),
		"deviceMemory":        float64(16),
		"hardwareConcurrency": float64(8),
		"pixelRatio":          1.5,
		"touchSupport":        false,
	})

	if c.CPUCores != "8" || c.DeviceMemory != "16" || c.HardwareConcurrency != "8" {
		t.Fatalf("numeric normalization = %q / %q / %q", c.CPUCores, c.DeviceMemory, c.HardwareConcurrency)
	}
	if c.PixelRatio != "1.5" {
		t.Fatalf("pixelRatio = %q", c.PixelRatio)
	}
	if c.TouchSupport != "false" {
		t.Fatalf("touchSupport = %q", c.TouchSupport)
	}
}

func TestParseMissingAndMistypedKeysDefault(t *testing.T) {
	c := Parse(map[string]any{
		"userAgent": 12345.0,
		"isBot":     "yes", // wrong type, must not coerce
	})

	if c.UserAgent != "12345" {
		t.Fatalf("numeric userAgent should stringify, got %q", c.UserAgent)
	}
	if c.IsBot {
		t.Fatal("mistyped isBot must default to false")
	}
	if c.Canvas != "" || c.Audio != "" || c.BotProbability != 0 {
		t.Fatal("absent keys must stay zero-valued")
	}
}

func TestParsePreservesRawMap(t *testing.T) {
	raw := map[string]any{
		"userAgent": "ua",
		"custom":    "kept-verbatim",
	}
	c := Parse(raw)

	var round map[string]any
	if err := json.Unmarshal([]byte(c.Raw), &round); err != nil {
		t.Fatalf("raw is not valid JSON: %v", err)
	}
	if round["custom"] != "kept-verbatim" {
		t.Fatal("unrecognized keys must survive in Raw")
	}
}
