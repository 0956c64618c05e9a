package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kvikmesh/kvik-go/internal/client"
)

// configOverlay mirrors the hot fields of client.Config as a YAML
// document, durations expressed as strings (e.g. "500ms") per
// time.ParseDuration. Any field left unset in the file keeps its default.
type configOverlay struct {
	RespTimeout  string `yaml:"respTimeout"`
	MsgTimeUnit  string `yaml:"msgTimeUnit"`
	MsgMaxAge    uint8  `yaml:"msgMaxAge"`
	DscvMinDelay string `yaml:"dscvMinDelay"`
	DscvMaxDelay string `yaml:"dscvMaxDelay"`
	SubLifetime  string `yaml:"subLifetime"`
	RSSIOnGwDscv *bool  `yaml:"rssiOnGwDscv"`
}

// overlayConfigFile reads a configOverlay document from path and applies
// it on top of cfg.
func overlayConfigFile(path string, cfg *client.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overlay configOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	if err := applyDuration(overlay.RespTimeout, &cfg.Node.LocalDelivery.RespTimeout); err != nil {
		return fmt.Errorf("respTimeout: %w", err)
	}
	if err := applyDuration(overlay.MsgTimeUnit, &cfg.Node.MsgIDCache.TimeUnit); err != nil {
		return fmt.Errorf("msgTimeUnit: %w", err)
	}
	if overlay.MsgMaxAge != 0 {
		cfg.Node.MsgIDCache.MaxAge = overlay.MsgMaxAge
	}
	if err := applyDuration(overlay.DscvMinDelay, &cfg.GwDscv.DscvMinDelay); err != nil {
		return fmt.Errorf("dscvMinDelay: %w", err)
	}
	if err := applyDuration(overlay.DscvMaxDelay, &cfg.GwDscv.DscvMaxDelay); err != nil {
		return fmt.Errorf("dscvMaxDelay: %w", err)
	}
	if err := applyDuration(overlay.SubLifetime, &cfg.SubDB.SubLifetime); err != nil {
		return fmt.Errorf("subLifetime: %w", err)
	}
	if overlay.RSSIOnGwDscv != nil {
		cfg.Reporting.RSSIOnGwDscv = *overlay.RSSIOnGwDscv
	}

	return nil
}

func applyDuration(s string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// loadRetainedState reads a client.RetainedData from path. A missing file
// is not an error; it reports the zero value, which New treats as "no
// retained gateway".
func loadRetainedState(path string) (client.RetainedData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return client.RetainedData{}, nil
	}
	if err != nil {
		return client.RetainedData{}, err
	}

	var retained client.RetainedData
	if err := yaml.Unmarshal(data, &retained); err != nil {
		return client.RetainedData{}, fmt.Errorf("parsing yaml: %w", err)
	}
	return retained, nil
}

// saveRetainedState writes retained to path as YAML.
func saveRetainedState(path string, retained client.RetainedData) error {
	data, err := yaml.Marshal(retained)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
