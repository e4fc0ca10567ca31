package main

import (
	"flag"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/announce"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to mudra.yaml")
	withTray := flag.Bool("tray", false, "show the system tray controls")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.InitLogging(cfg.Log)

	st, err := store.New(databasePath(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	eng := buildEngine(cfg, st)
	defer eng.Close()

	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start recognition pipeline: %v", err)
	}

	srv := server.New(server.Config{Engine: eng, Store: st})
	if *withTray {
		go serveHTTP(srv, cfg.Server.Addr)
		runTray(eng)
		return
	}
	serveHTTP(srv, cfg.Server.Addr)
}

// buildEngine wires the detector chain, the announce channel and the
// pipeline configuration into a new engine instance.
func buildEngine(cfg *config.Config, st *store.Store) *engine.Engine {
	opts := engine.Options{
		Store:     st,
		ModelPath: cfg.Detector.ModelPath,
		Config: engine.Config{
			RecognitionThreshold: cfg.Pipeline.RecognitionThreshold,
			ProcessingIntervalMs: cfg.Pipeline.ProcessingIntervalMs,
			TrackingHistorySize:  cfg.Pipeline.TrackingHistorySize,
			ActiveLanguage:       cfg.Pipeline.ActiveLanguage,
			SpeakRecognizedSigns: cfg.Pipeline.SpeakRecognizedSigns,
		},
	}

	detCfg := detector.Config{
		MaxHands:      cfg.Detector.MaxHands,
		MinConfidence: cfg.Detector.MinConfidence,
		ScriptPath:    cfg.Detector.ScriptPath,
	}
	if primary, err := detector.NewPrimaryDetector(detCfg); err == nil {
		opts.Primary = primary
		log.Info("Using local hand landmarker")
	} else {
		log.WithError(err).Warn("Local hand landmarker not available")
	}

	if cfg.Cloud.Enabled {
		opts.Fallback = detector.NewCloudDetector(detector.CloudConfig{
			URL:    cfg.Cloud.URL,
			APIKey: cfg.Cloud.APIKey,
		})
		log.WithField("url", cfg.Cloud.URL).Info("Cloud fallback detector configured")
	}

	if cfg.MQTT.Enabled {
		announcer, err := announce.NewMQTTAnnouncer(announce.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			Port:     cfg.MQTT.Port,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
		})
		if err != nil {
			log.WithError(err).Warn("Announce channel unavailable, speech output disabled")
		} else {
			opts.Announcer = announcer
		}
	}

	return engine.New(opts)
}

func serveHTTP(srv *server.Server, addr string) {
	log.WithField("addr", addr).Info("Starting HTTP server")
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runTray shows the tray controls and keeps the last-sign line current.
// Blocks until quit.
func runTray(eng *engine.Engine) {
	t := tray.New(eng.SupportedLanguages())

	t.OnToggle(func(enabled bool) {
		if enabled {
			if err := eng.Start(); err != nil {
				log.WithError(err).Error("Failed to restart pipeline")
			}
		} else {
			eng.Stop()
		}
	})
	t.OnSpeak(func(enabled bool) {
		eng.UpdateConfig(engine.Patch{SpeakRecognizedSigns: &enabled})
	})
	t.OnLanguage(func(code string) {
		eng.UpdateConfig(engine.Patch{ActiveLanguage: &code})
	})
	t.OnQuit(func() {
		eng.Stop()
	})

	go func() {
		for result := range eng.Subscribe() {
			t.SetLastSign(result.Value)
		}
	}()

	t.Run()
}

// databasePath resolves the SQLite file location, defaulting to
// ~/.mudra/mudra.db.
func databasePath(cfg *config.Config) string {
	if cfg.DB.File != "" {
		return cfg.DB.File
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "mudra.db"
	}

	dbDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "mudra.db"
	}
	return filepath.Join(dbDir, "mudra.db")
}
