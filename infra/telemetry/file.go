package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FileSource reads the cached device snapshot {"properties":{"electricLevel":N}}.
// Snapshots older than maxAge are ignored when maxAge is positive.
type FileSource struct {
	path   string
	maxAge time.Duration
	now    func() time.Time
}

// NewFileSource creates a source reading path.
func NewFileSource(path string, maxAge time.Duration) *FileSource {
	return &FileSource{path: path, maxAge: maxAge, now: time.Now}
}

// BatteryLevel reads the snapshot.
func (s *FileSource) BatteryLevel(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if s.maxAge > 0 {
		st, err := os.Stat(s.path)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if age := s.now().Sub(st.ModTime()); age > s.maxAge {
			return 0, fmt.Errorf("%w: %s is %s old", ErrUnavailable, s.path, age.Round(time.Second))
		}
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return parseProperties(data)
}
