package common

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all scanning-core configuration.
type Config struct {
	Thresholds Thresholds
	Extract    ExtractConfig
}

// Thresholds holds the confidence gates. Platforms tune these differently
// (the defaults below match the stricter deployment); they are deployment
// configuration, never a code branch.
type Thresholds struct {
	InvoiceNumber float64 // gate for the invoice number line
	Field         float64 // gate for optional scalar fields
	Amount        float64 // gate for the invoice amount line
	Create        float64 // minimum Info confidence to create a record
	Update        float64 // minimum Info confidence to update a record
}

// ExtractConfig holds spatial-extraction tolerances.
type ExtractConfig struct {
	Containment      float64  // region membership ratio
	TargetClasses    []string // region classes extraction is allowed to read
	MaxHorizontalGap float64  // label/value right-search reach, pixels
	MaxVerticalGap   float64  // label/value below-search reach, pixels
	OverlapFraction  float64  // vertical-overlap fraction for right search
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Thresholds: Thresholds{
			InvoiceNumber: getEnvAsFloat("SCAN_NUMBER_CONFIDENCE", 0.90),
			Field:         getEnvAsFloat("SCAN_FIELD_CONFIDENCE", 0.85),
			Amount:        getEnvAsFloat("SCAN_AMOUNT_CONFIDENCE", 0.65),
			Create:        getEnvAsFloat("SCAN_CREATE_THRESHOLD", 0.60),
			Update:        getEnvAsFloat("SCAN_UPDATE_THRESHOLD", 0.60),
		},
		Extract: ExtractConfig{
			Containment:      getEnvAsFloat("SCAN_CONTAINMENT", 0.3),
			TargetClasses:    getEnvAsList("SCAN_TARGET_CLASSES", []string{"table", "text"}),
			MaxHorizontalGap: getEnvAsFloat("SCAN_MAX_HORIZONTAL_GAP", 160),
			MaxVerticalGap:   getEnvAsFloat("SCAN_MAX_VERTICAL_GAP", 80),
			OverlapFraction:  getEnvAsFloat("SCAN_OVERLAP_FRACTION", 0.5),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	for name, v := range map[string]float64{
		"SCAN_NUMBER_CONFIDENCE": c.Thresholds.InvoiceNumber,
		"SCAN_FIELD_CONFIDENCE":  c.Thresholds.Field,
		"SCAN_AMOUNT_CONFIDENCE": c.Thresholds.Amount,
		"SCAN_CREATE_THRESHOLD":  c.Thresholds.Create,
		"SCAN_UPDATE_THRESHOLD":  c.Thresholds.Update,
	} {
		if v < 0 || v > 1 {
			return NewAppError("CONFIG_ERROR", name+" must be in [0,1]", ErrInvalidInput)
		}
	}
	if c.Extract.Containment <= 0 || c.Extract.Containment > 1 {
		return NewAppError("CONFIG_ERROR", "SCAN_CONTAINMENT must be in (0,1]", ErrInvalidInput)
	}
	if len(c.Extract.TargetClasses) == 0 {
		return NewAppError("CONFIG_ERROR", "SCAN_TARGET_CLASSES must not be empty", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
