package detection

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/sheet-omr/internal/logger"
)

// BackendInfo describes the correlation backend compiled into the binary.
type BackendInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

var (
	backendOnce sync.Once
	backend     BackendInfo
)

// InitBackend performs the one-time, process-wide setup of the correlation
// backend and reports which one is active. It is safe to call from several
// goroutines and more than once; only the first call does any work.
//
// Builds with the gocv tag use OpenCV; all others use the pure Go matcher.
func InitBackend() BackendInfo {
	backendOnce.Do(func() {
		backend = BackendInfo{Name: backendName(), Version: backendVersion()}
		logger.WithFields(logrus.Fields{
			"backend": backend.Name,
			"version": backend.Version,
		}).Debug("Correlation backend initialised")
	})
	return backend
}
