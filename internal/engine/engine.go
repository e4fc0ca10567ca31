// Package engine provides the recognition orchestrator: it owns the
// pipeline configuration and run state, throttles frame intake, drives the
// detector backends, the tracking buffer and the classifiers, and caches
// the most recent recognized sign.
package engine

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/announce"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/sign"
	"github.com/ayusman/mudra/internal/store"
)

// Options wires the engine's collaborators. Primary and Fallback are the
// detector backends; either may be nil, but not both. A nil Announcer
// disables speech output entirely.
type Options struct {
	Primary   detector.Detector
	Fallback  detector.Detector
	ModelPath string
	Store     *store.Store
	Announcer announce.Announcer
	Config    Config
}

// Engine is the recognition orchestrator. All mutable pipeline state (the
// configuration, the tracking buffer, the last recognized sign) is owned
// by one Engine instance; construct a fresh instance per test.
type Engine struct {
	mu          sync.Mutex
	config      Config
	running     bool
	initialized bool

	primary    detector.Detector
	fallback   detector.Detector
	classifier classify.StaticClassifier
	dynamic    *classify.DynamicRecognizer
	buffer     *classify.TrackingBuffer

	dictionaries map[string]*sign.Dictionary
	announcer    announce.Announcer
	st           *store.Store
	modelPath    string

	lastSign      *sign.RecognizedSign
	lastProcessed time.Time
	inFlight      bool

	subMu       sync.Mutex
	subscribers []chan *sign.RecognizedSign
}

// subscriberQueueSize bounds each subscriber's delivery queue. Sends are
// non-blocking; a slow consumer misses results rather than stalling the
// pipeline.
const subscriberQueueSize = 16

// New creates an Engine. Start must be called before frames are accepted.
func New(opts Options) *Engine {
	cfg := opts.Config.withDefaults()

	announcer := opts.Announcer
	if announcer == nil {
		announcer = announce.NopAnnouncer{}
	}

	return &Engine{
		config:    cfg,
		primary:   opts.Primary,
		fallback:  opts.Fallback,
		dynamic:   classify.NewDynamicRecognizer(),
		buffer:    classify.NewTrackingBuffer(cfg.TrackingHistorySize),
		announcer: announcer,
		st:        opts.Store,
		modelPath: opts.ModelPath,
	}
}

// Start initializes the pipeline components if needed, clears the tracking
// buffer and the last-sign cache, and begins accepting frames.
// Initialization happens once per Engine; subsequent Start calls only
// reset the per-session state.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	if !e.initialized {
		if err := e.initialize(); err != nil {
			return err
		}
		e.initialized = true
	}

	e.buffer.Clear()
	e.lastSign = nil
	e.running = true
	log.WithField("language", e.config.ActiveLanguage).Info("Recognition pipeline started")
	return nil
}

// Stop halts frame intake. The tracking buffer and the last detected sign
// remain readable until the next Start. An in-flight cycle is allowed to
// finish; its result is discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	log.Info("Recognition pipeline stopped")
}

// initialize builds the dictionaries and selects the static classifier.
// Called with e.mu held. Only a total absence of detector backends or
// dictionaries is fatal; a missing model degrades to the rule classifier
// for the remainder of the session.
func (e *Engine) initialize() error {
	if e.primary == nil && e.fallback == nil {
		return errors.New("no detector backend configured")
	}

	e.dictionaries = make(map[string]*sign.Dictionary, len(sign.SupportedLanguages))
	for _, lang := range sign.SupportedLanguages {
		dict, err := sign.NewDictionary(lang)
		if err != nil {
			return err
		}
		if e.st != nil {
			if err := overlayCustomSigns(dict, e.st, lang); err != nil {
				log.WithError(err).WithField("language", lang).Warn("Failed to load custom signs")
			}
		}
		e.dictionaries[lang] = dict
	}

	if e.modelPath != "" {
		model, err := classify.LoadModel(e.modelPath)
		if err != nil {
			// Permanent for the session: logged once, not retried per frame.
			log.WithError(err).Warn("Static classification model unavailable, using rule-based fallback")
		} else {
			e.classifier = classify.NewModelClassifier(model)
			log.WithField("path", e.modelPath).Info("Static classification model loaded")
		}
	}
	if e.classifier == nil {
		e.classifier = classify.NewRuleClassifier()
	}

	return nil
}

func overlayCustomSigns(dict *sign.Dictionary, st *store.Store, lang string) error {
	customs, err := st.Signs().ListByLanguage(lang)
	if err != nil {
		return err
	}
	for _, cs := range customs {
		dict.Put(cs.Key, sign.Entry{
			Value:          cs.Value,
			Type:           sign.Type(cs.Type),
			BaseConfidence: cs.BaseConfidence,
		})
	}
	if len(customs) > 0 {
		log.WithFields(log.Fields{"language": lang, "count": len(customs)}).
			Info("Loaded custom dictionary entries")
	}
	return nil
}

// ProcessFrame runs one recognition cycle over the frame. Calls are
// rejected, returning the cached last sign, when the engine is stopped,
// when the throttle interval has not elapsed, or when a previous cycle is
// still in flight. Nothing inside a cycle raises to the caller: every
// internal failure degrades to "no result for this frame".
func (e *Engine) ProcessFrame(frame *gocv.Mat) *sign.RecognizedSign {
	e.mu.Lock()

	interval := time.Duration(e.config.ProcessingIntervalMs) * time.Millisecond
	if !e.running || time.Since(e.lastProcessed) < interval || e.inFlight {
		last := e.lastSign
		e.mu.Unlock()
		return last
	}

	e.inFlight = true
	e.lastProcessed = time.Now()
	threshold := e.config.RecognitionThreshold
	lang := e.config.ActiveLanguage
	speak := e.config.SpeakRecognizedSigns
	dict := e.dictionaries[lang]
	e.mu.Unlock()

	result := e.runCycle(frame, dict, lang, threshold)

	e.mu.Lock()
	e.inFlight = false
	if !e.running {
		// Stopped mid-cycle: the result is never surfaced.
		last := e.lastSign
		e.mu.Unlock()
		return last
	}
	e.lastSign = result
	e.mu.Unlock()

	if result != nil {
		if speak {
			e.announcer.Announce(result.Value, sign.SpokenTag(lang))
		}
		e.publish(result)
	}
	return result
}

// runCycle executes detection, tracking and classification for one frame.
func (e *Engine) runCycle(frame *gocv.Mat, dict *sign.Dictionary, lang string, threshold float64) *sign.RecognizedSign {
	hands := e.detect(frame)

	if len(hands) == 0 {
		// No hands means no continuity to track.
		e.mu.Lock()
		e.buffer.Clear()
		e.mu.Unlock()
		return nil
	}

	e.mu.Lock()
	e.buffer.Push(hands)
	motion, motionOK := e.dynamic.Recognize(e.buffer)
	e.mu.Unlock()

	// Dynamic signs take priority over static poses.
	if motionOK && motion.Confidence >= threshold {
		return e.resolve(dict, lang, motion, sign.TypeDynamic)
	}

	req := classify.Request{
		Hands:     hands,
		Features:  classify.ExtractFeatures(hands),
		Keys:      dict.Keys(),
		Threshold: threshold,
	}
	if result, ok := e.classifier.Classify(req); ok {
		return e.resolve(dict, lang, result, "")
	}
	return nil
}

// resolve turns a classification result into a RecognizedSign via the
// active dictionary. typeOverride forces the sign type for the dynamic
// path; otherwise the dictionary entry's type applies.
func (e *Engine) resolve(dict *sign.Dictionary, lang string, result classify.Result, typeOverride sign.Type) *sign.RecognizedSign {
	entry, ok := dict.Lookup(result.Key)
	if !ok {
		log.WithFields(log.Fields{"key": result.Key, "language": lang}).
			Debug("Classifier key missing from dictionary")
		return nil
	}

	signType := entry.Type
	if typeOverride != "" {
		signType = typeOverride
	}

	return &sign.RecognizedSign{
		Type:       signType,
		Value:      entry.Value,
		Confidence: result.Confidence,
		Language:   lang,
		Timestamp:  time.Now(),
	}
}

// detect runs the backend chain: primary first, then the fallback when the
// primary fails or comes up empty. If every backend fails the frame is
// treated as containing no hands; the failure is logged, never raised.
func (e *Engine) detect(frame *gocv.Mat) []detector.HandLandmarks {
	var hands []detector.HandLandmarks
	var err error

	if e.primary != nil {
		hands, err = e.primary.Detect(frame)
		if err == nil && len(hands) > 0 {
			return hands
		}
		if err != nil {
			log.WithError(err).Debug("Primary detector failed, trying fallback")
		}
	}

	if e.fallback == nil {
		return hands
	}

	fbHands, fbErr := e.fallback.Detect(frame)
	if fbErr != nil {
		// Quota refusal and transport failure are handled identically.
		log.WithError(fbErr).Debug("Fallback detector failed, treating frame as empty")
		return hands
	}
	return fbHands
}

// LastSign returns the most recently cached recognition result, which may
// be nil.
func (e *Engine) LastSign() *sign.RecognizedSign {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSign
}

// Running reports whether the engine is accepting frames.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// BufferLen returns the current tracking buffer depth.
func (e *Engine) BufferLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Len()
}

// Subscribe registers a consumer of recognized signs and returns its
// delivery channel. Every result is fanned out to every subscriber, so
// independent consumers (websocket hub, tray) each see the full stream.
func (e *Engine) Subscribe() <-chan *sign.RecognizedSign {
	ch := make(chan *sign.RecognizedSign, subscriberQueueSize)
	e.subMu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.subMu.Unlock()
	return ch
}

// publish fans a result out to all subscribers without blocking.
func (e *Engine) publish(result *sign.RecognizedSign) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- result:
		default:
		}
	}
}

// SupportedLanguages lists the languages with loaded dictionaries.
func (e *Engine) SupportedLanguages() []string {
	return append([]string(nil), sign.SupportedLanguages...)
}

// IsLanguageSupported reports whether a dictionary exists for the code.
func (e *Engine) IsLanguageSupported(code string) bool {
	return sign.IsSupported(code)
}

// Dictionary returns the loaded dictionary for a language, or nil before
// initialization or for unknown codes.
func (e *Engine) Dictionary(lang string) *sign.Dictionary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dictionaries[lang]
}

// Close stops the engine and releases the detector backends.
func (e *Engine) Close() {
	e.Stop()

	if e.primary != nil {
		if err := e.primary.Close(); err != nil {
			log.WithError(err).Error("Error closing primary detector")
		}
	}
	if e.fallback != nil {
		if err := e.fallback.Close(); err != nil {
			log.WithError(err).Error("Error closing fallback detector")
		}
	}
	e.announcer.Close()
}
