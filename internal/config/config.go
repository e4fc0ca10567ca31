// Package config loads the application configuration file and initializes
// logging.
package config

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application-level configuration loaded from mudra.yaml.
// The runtime pipeline settings (threshold, interval, language) live in
// the engine and are hot-swappable; this file only provides their startup
// values.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Detector DetectorConfig `mapstructure:"detector"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	File string `mapstructure:"file"`
}

// DetectorConfig holds settings for the local detector backend.
type DetectorConfig struct {
	ScriptPath    string  `mapstructure:"script_path"`
	ModelPath     string  `mapstructure:"model_path"`
	MaxHands      int     `mapstructure:"max_hands"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// CloudConfig holds settings for the remote fallback backend.
type CloudConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
}

// MQTTConfig holds settings for the announce channel.
type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Port     int    `mapstructure:"port"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
}

// PipelineConfig holds the startup values for the hot-swappable pipeline
// settings.
type PipelineConfig struct {
	RecognitionThreshold float64 `mapstructure:"recognition_threshold"`
	ProcessingIntervalMs int     `mapstructure:"processing_interval_ms"`
	TrackingHistorySize  int     `mapstructure:"tracking_history_size"`
	ActiveLanguage       string  `mapstructure:"active_language"`
	SpeakRecognizedSigns bool    `mapstructure:"speak_recognized_signs"`
}

// Load reads mudra.yaml from the given path (or the usual locations when
// empty) with environment variable overrides prefixed MUDRA_. Missing
// files are not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("mudra")
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mudra"))
		}
	}

	v.SetEnvPrefix("MUDRA")
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("detector.max_hands", 2)
	v.SetDefault("detector.min_confidence", 0.5)
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.topic", "mudra/announce")
	v.SetDefault("pipeline.recognition_threshold", 0.65)
	v.SetDefault("pipeline.processing_interval_ms", 300)
	v.SetDefault("pipeline.tracking_history_size", 30)
	v.SetDefault("pipeline.active_language", "asl")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, err
		}
		log.Debug("No configuration file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitLogging configures logrus from the log settings.
func InitLogging(cfg LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Invalid log level %q, defaulting to info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
