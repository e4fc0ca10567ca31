// Package tray provides the system tray control surface for the sign
// recognition engine.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application: a recognition toggle, a
// speech toggle, language selection and the last recognized sign.
type Tray struct {
	onToggle   func(enabled bool)
	onSpeak    func(enabled bool)
	onLanguage func(code string)
	onQuit     func()

	languages []string
	enabled   bool
	speaking  bool
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuSpeak    *systray.MenuItem
	menuLastSign *systray.MenuItem
	menuLangs    map[string]*systray.MenuItem
}

// New creates a new Tray offering the given language choices, with
// recognition enabled by default.
func New(languages []string) *Tray {
	return &Tray{
		languages: languages,
		enabled:   true,
		menuLangs: make(map[string]*systray.MenuItem),
	}
}

// OnToggle sets the callback for the recognition enable/disable item.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSpeak sets the callback for the speech toggle item.
func (t *Tray) OnSpeak(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSpeak = fn
}

// OnLanguage sets the callback for language selection.
func (t *Tray) OnLanguage(fn func(code string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLanguage = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. Blocks until systray.Quit() is
// called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Sign Recognition")

	t.menuToggle = systray.AddMenuItem("● Recognition on", "Toggle sign recognition")
	t.menuSpeak = systray.AddMenuItem("○ Speech off", "Toggle spoken announcements")
	systray.AddSeparator()

	t.menuLastSign = systray.AddMenuItem("Last: none", "Last recognized sign")
	t.menuLastSign.Disable()
	systray.AddSeparator()

	menuLanguage := systray.AddMenuItem("Language", "Active sign language")
	for _, code := range t.languages {
		t.menuLangs[code] = menuLanguage.AddSubMenuItem(code, "Switch to "+code)
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go t.handleClicks(menuQuit)
}

func (t *Tray) handleClicks(menuQuit *systray.MenuItem) {
	// One case per language submenu item plus the fixed items; reflect
	// select cases would be overkill for three languages, so each language
	// gets its own forwarding goroutine instead.
	for code, item := range t.menuLangs {
		go func(code string, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleLanguage(code)
			}
		}(code, item)
	}

	for {
		select {
		case <-t.menuToggle.ClickedCh:
			t.handleToggle()
		case <-t.menuSpeak.ClickedCh:
			t.handleSpeak()
		case <-menuQuit.ClickedCh:
			t.handleQuit()
			return
		}
	}
}

func (t *Tray) onExit() {
	// Cleanup resources if needed
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Recognition on")
	} else {
		t.menuToggle.SetTitle("○ Recognition off")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSpeak() {
	t.mu.Lock()
	t.speaking = !t.speaking
	speaking := t.speaking

	if speaking {
		t.menuSpeak.SetTitle("● Speech on")
	} else {
		t.menuSpeak.SetTitle("○ Speech off")
	}

	callback := t.onSpeak
	t.mu.Unlock()

	if callback != nil {
		callback(speaking)
	}
}

func (t *Tray) handleLanguage(code string) {
	t.mu.RLock()
	callback := t.onLanguage
	t.mu.RUnlock()

	if callback != nil {
		callback(code)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastSign updates the last recognized sign display in the menu.
func (t *Tray) SetLastSign(value string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastSign != nil {
		if value == "" {
			t.menuLastSign.SetTitle("Last: none")
		} else {
			t.menuLastSign.SetTitle("Last: " + value)
		}
	}
}

// IsEnabled returns the current recognition state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
