package engine

import "sync"

var (
	defaultOnce     sync.Once
	defaultInstance *Engine
)

// Default returns a single process-wide Engine instance, initialized on
// first call. It mirrors the single-global-instance shape of the original
// C++ API for callers that want that; internal code and tests construct
// New() values directly instead.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultInstance = New()
	})
	return defaultInstance
}
