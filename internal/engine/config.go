package engine

import (
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/sign"
)

// Pipeline defaults.
const (
	DefaultRecognitionThreshold = 0.65
	DefaultProcessingIntervalMs = 300
	DefaultLanguage             = "asl"
)

// Config is the hot-swappable pipeline configuration. It is owned by the
// Engine and only ever mutated through UpdateConfig.
type Config struct {
	// RecognitionThreshold is the minimum confidence for a classification
	// to be surfaced as a RecognizedSign.
	RecognitionThreshold float64 `json:"recognition_threshold"`

	// ProcessingIntervalMs throttles frame intake: frames arriving sooner
	// than this after the last processed frame are rejected.
	ProcessingIntervalMs int `json:"processing_interval_ms"`

	// TrackingHistorySize bounds the tracking buffer.
	TrackingHistorySize int `json:"tracking_history_size"`

	// ActiveLanguage selects which sign dictionary is consulted.
	ActiveLanguage string `json:"active_language"`

	// SpeakRecognizedSigns enables the speech announcement side effect.
	SpeakRecognizedSigns bool `json:"speak_recognized_signs"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		RecognitionThreshold: DefaultRecognitionThreshold,
		ProcessingIntervalMs: DefaultProcessingIntervalMs,
		TrackingHistorySize:  classify.DefaultHistorySize,
		ActiveLanguage:       DefaultLanguage,
	}
}

func (c Config) withDefaults() Config {
	if c.RecognitionThreshold <= 0 {
		c.RecognitionThreshold = DefaultRecognitionThreshold
	}
	if c.ProcessingIntervalMs <= 0 {
		c.ProcessingIntervalMs = DefaultProcessingIntervalMs
	}
	if c.TrackingHistorySize <= 0 {
		c.TrackingHistorySize = classify.DefaultHistorySize
	}
	if !sign.IsSupported(c.ActiveLanguage) {
		c.ActiveLanguage = DefaultLanguage
	}
	return c
}

// Patch is a partial configuration update; nil fields are left untouched.
type Patch struct {
	RecognitionThreshold *float64 `json:"recognition_threshold,omitempty"`
	ProcessingIntervalMs *int     `json:"processing_interval_ms,omitempty"`
	TrackingHistorySize  *int     `json:"tracking_history_size,omitempty"`
	ActiveLanguage       *string  `json:"active_language,omitempty"`
	SpeakRecognizedSigns *bool    `json:"speak_recognized_signs,omitempty"`
}

// UpdateConfig merges the patch into the pipeline configuration. Invalid
// fields are skipped and reported back by name; the prior values stay in
// effect for them. The run state and the buffers are never reset by a
// configuration change, though shrinking the history size trims the
// buffer's oldest entries.
func (e *Engine) UpdateConfig(patch Patch) (Config, []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ignored []string

	if patch.RecognitionThreshold != nil {
		if v := *patch.RecognitionThreshold; v >= 0 && v <= 1 {
			e.config.RecognitionThreshold = v
		} else {
			ignored = append(ignored, "recognition_threshold")
		}
	}
	if patch.ProcessingIntervalMs != nil {
		if v := *patch.ProcessingIntervalMs; v > 0 {
			e.config.ProcessingIntervalMs = v
		} else {
			ignored = append(ignored, "processing_interval_ms")
		}
	}
	if patch.TrackingHistorySize != nil {
		if v := *patch.TrackingHistorySize; v > 0 {
			e.config.TrackingHistorySize = v
			e.buffer.SetLimit(v)
		} else {
			ignored = append(ignored, "tracking_history_size")
		}
	}
	if patch.ActiveLanguage != nil {
		if sign.IsSupported(*patch.ActiveLanguage) {
			e.config.ActiveLanguage = *patch.ActiveLanguage
		} else {
			ignored = append(ignored, "active_language")
		}
	}
	if patch.SpeakRecognizedSigns != nil {
		e.config.SpeakRecognizedSigns = *patch.SpeakRecognizedSigns
	}

	log.WithFields(log.Fields{
		"threshold": e.config.RecognitionThreshold,
		"interval":  e.config.ProcessingIntervalMs,
		"history":   e.config.TrackingHistorySize,
		"language":  e.config.ActiveLanguage,
		"speak":     e.config.SpeakRecognizedSigns,
	}).Info("Pipeline configuration updated")

	return e.config, ignored
}

// Config returns a copy of the current pipeline configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}
