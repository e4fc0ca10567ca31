package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// primaryIdleShutdown is how long the landmarker subprocess may sit unused
// before it is stopped to free memory. It restarts lazily on the next call.
const primaryIdleShutdown = 30 * time.Second

// PrimaryDetector is the local, low-latency backend. It runs the hand
// landmarker as a Python subprocess speaking a length-prefixed JPEG
// request / JSON line response protocol over stdin/stdout. The process is
// started lazily on first detection.
type PrimaryDetector struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewPrimaryDetector creates the local detector. It fails fast if the
// landmarker service script cannot be found, so the caller can fall back
// to the cloud backend at initialization time.
func NewPrimaryDetector(config Config) (*PrimaryDetector, error) {
	if findLandmarkerScript(config.ScriptPath) == "" {
		return nil, fmt.Errorf("hand_landmarker_service.py not found: %w", ErrUnavailable)
	}
	return &PrimaryDetector{config: config}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *PrimaryDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Length-prefixed frame: 4 bytes big-endian, then JPEG bytes.
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		d.shutdown()
		return nil, fmt.Errorf("%w: write length: %v", ErrUnavailable, err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		d.shutdown()
		return nil, fmt.Errorf("%w: write frame: %v", ErrUnavailable, err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		d.shutdown()
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var response struct {
		Hands []wireHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		// A partial hand is useless downstream; only complete 21-point
		// detections above the confidence floor are surfaced.
		if len(h.Points) < NumLandmarks || h.Score < d.config.MinConfidence {
			continue
		}
		if len(result) >= d.config.MaxHands && d.config.MaxHands > 0 {
			break
		}
		result = append(result, h.toHandLandmarks())
	}

	d.resetIdleTimer()
	return result, nil
}

// Close shuts down the landmarker subprocess.
func (d *PrimaryDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *PrimaryDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	scriptPath := findLandmarkerScript(d.config.ScriptPath)
	if scriptPath == "" {
		return fmt.Errorf("hand_landmarker_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start landmarker service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	log.WithField("script", scriptPath).Debug("Hand landmarker service started")
	return nil
}

func (d *PrimaryDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	log.Debug("Hand landmarker service stopped")
	return err
}

func (d *PrimaryDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(primaryIdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// findLandmarkerScript locates the landmarker service script, preferring
// an explicitly configured path over the usual candidates.
func findLandmarkerScript(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
		return ""
	}

	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/hand_landmarker_service.py",
		"../scripts/hand_landmarker_service.py",
		filepath.Join(execDir, "scripts/hand_landmarker_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/hand_landmarker_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment
// near the executable or under the user data directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// wireHand is the JSON structure emitted by the landmarker service.
type wireHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h wireHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = h.Points[i]
	}
	return lm
}
