package media

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teimsafety/ppectl/internal/shared"
)

// CameraSession represents an open capture device. Device access is
// exclusive: opening a new session tears down the currently open one first.
type CameraSession struct {
	mu   sync.Mutex
	cap  *gocv.VideoCapture
	open bool
}

var (
	activeMu      sync.Mutex
	activeSession *CameraSession
)

// OpenCamera opens the configured capture device and returns a session for
// it. Any previously open session is closed before the device is acquired.
func OpenCamera(cfg shared.CameraConfig) (*CameraSession, error) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if activeSession != nil {
		activeSession.Close()
		activeSession = nil
	}

	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", shared.ErrCaptureUnavailable, cfg.DeviceID, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: device %d not opened", shared.ErrCaptureUnavailable, cfg.DeviceID)
	}

	if cfg.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	session := &CameraSession{cap: cap, open: true}
	activeSession = session
	return session, nil
}

// Still reads a single frame from the device and encodes it as JPEG.
// Fails with [shared.ErrCaptureUnavailable] when the session is closed or
// the device yields no frame.
func (s *CameraSession) Still() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, fmt.Errorf("%w: session closed", shared.ErrCaptureUnavailable)
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := s.cap.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("%w: no frame available", shared.ErrCaptureUnavailable)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("%w: jpeg encode failed: %v", shared.ErrCaptureUnavailable, err)
	}
	defer buf.Close()

	// GetBytes is only valid until buf is closed.
	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Close releases the capture device. Idempotent.
func (s *CameraSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	return s.cap.Close()
}

// Open reports whether the session still holds the device.
func (s *CameraSession) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
