package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/analytics"
)

// Calibration holds the tunable analytics and alert constants.
type Calibration struct {
	Analytics analytics.Thresholds `yaml:"analytics"`
	Alerts    alert.Rules          `yaml:"alerts"`
}

// DefaultCalibration returns the built-in constants.
func DefaultCalibration() Calibration {
	return Calibration{
		Analytics: analytics.DefaultThresholds(),
		Alerts:    alert.DefaultRules(),
	}
}

// LoadCalibration overlays the YAML file at path onto the defaults. Keys
// missing from the file keep their default value. An empty path yields the
// defaults unchanged.
func LoadCalibration(path string) (Calibration, error) {
	cal := DefaultCalibration()
	if path == "" {
		return cal, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("failed to read calibration file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cal); err != nil {
		return Calibration{}, fmt.Errorf("failed to parse calibration file %s: %w", path, err)
	}

	if err := cal.Analytics.Validate(); err != nil {
		return Calibration{}, err
	}
	if err := cal.Alerts.Validate(); err != nil {
		return Calibration{}, err
	}
	return cal, nil
}
