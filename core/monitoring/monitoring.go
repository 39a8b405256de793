// Package monitoring forwards unexpected errors to an error tracker.
package monitoring

import (
	"fmt"
	"sync"
	"time"
)

// Monitor receives errors the service could not handle itself.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor drops everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the process-wide monitor. A nil monitor is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

// Current returns the process-wide monitor.
func Current() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Capture reports err tagged with key/value pairs. A trailing key without a
// value is dropped.
func Capture(err error, kv ...string) {
	if err == nil {
		return
	}
	var tags map[string]string
	if len(kv) >= 2 {
		tags = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			tags[kv[i]] = kv[i+1]
		}
	}
	Current().CaptureException(err, tags)
}

// Go runs fn in a goroutine and reports a panic instead of crashing the
// process.
func Go(component string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Capture(fmt.Errorf("panic: %v", r), "component", component)
			}
		}()
		fn()
	}()
}

// Flush waits up to d for buffered events to be sent.
func Flush(d time.Duration) { Current().Flush(d) }
