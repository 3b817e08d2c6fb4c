// Package conf loads server settings from an optional owlvision.yaml config
// file and OWLVISION_* environment variables, with sane defaults for every
// knob. Settings are read once at startup and treated as immutable.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested config keys to env var segments, so
// backend.url becomes OWLVISION_BACKEND_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Settings holds the full server configuration.
type Settings struct {
	Backend     BackendSettings     `mapstructure:"backend"`
	Detection   DetectionSettings   `mapstructure:"detection"`
	Translation TranslationSettings `mapstructure:"translation"`

	// Debug adds structured diagnostic context to tool responses.
	Debug bool `mapstructure:"debug"`
}

// BackendSettings configures the inference backend.
type BackendSettings struct {
	// URL is the base URL of the inference sidecar.
	URL string `mapstructure:"url"`

	// Model is the detection model the backend should serve.
	Model string `mapstructure:"model"`
}

// DetectionSettings holds default thresholds, overridable per tool call.
type DetectionSettings struct {
	// ConfidenceThreshold is the base confidence threshold the adaptive
	// ladder starts from.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`

	// NMSThreshold is the IoU cutoff for the image-guided path.
	NMSThreshold float64 `mapstructure:"nms_threshold"`

	// MaxImageEdge bounds the longer image edge sent to the backend.
	MaxImageEdge int `mapstructure:"max_image_edge"`
}

// TranslationSettings configures the remote translation fallback.
type TranslationSettings struct {
	// AllowAPI permits remote translation when a request asks for it.
	AllowAPI bool `mapstructure:"allow_api"`

	// APIURL overrides the translation endpoint.
	APIURL string `mapstructure:"api_url"`

	// Timeout bounds a single translation attempt.
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.model", "google/owlvit-base-patch32")
	v.SetDefault("detection.confidence_threshold", 0.1)
	v.SetDefault("detection.nms_threshold", 0.3)
	v.SetDefault("detection.max_image_edge", 800)
	v.SetDefault("translation.allow_api", false)
	v.SetDefault("translation.api_url", "")
	v.SetDefault("translation.timeout", 10*time.Second)
	v.SetDefault("debug", false)
}

// Load reads settings from path if non-empty, otherwise from owlvision.yaml
// in the working directory when present. A missing config file is fine;
// defaults and environment variables still apply.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OWLVISION")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("owlvision")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.Backend.URL == "" {
		return fmt.Errorf("backend.url must not be empty")
	}
	if s.Detection.ConfidenceThreshold < 0 || s.Detection.ConfidenceThreshold > 1 {
		return fmt.Errorf("detection.confidence_threshold must be in [0,1], got %v", s.Detection.ConfidenceThreshold)
	}
	if s.Detection.NMSThreshold < 0 || s.Detection.NMSThreshold > 1 {
		return fmt.Errorf("detection.nms_threshold must be in [0,1], got %v", s.Detection.NMSThreshold)
	}
	if s.Detection.MaxImageEdge < 0 {
		return fmt.Errorf("detection.max_image_edge must not be negative, got %d", s.Detection.MaxImageEdge)
	}
	return nil
}
