package models

import (
	"context"
	"sync"
	"time"
)

// FileURLGenerator signs storage paths so stored files can be served directly.
type FileURLGenerator interface {
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	urlGenerator FileURLGenerator
	registryMu   sync.RWMutex
)

// RegisterFileURLGenerator sets the URL generator used when files are loaded.
// Passing nil disables signing.
func RegisterFileURLGenerator(generator FileURLGenerator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	urlGenerator = generator
}

func fileURLGenerator() FileURLGenerator {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return urlGenerator
}
