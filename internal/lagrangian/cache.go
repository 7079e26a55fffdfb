package lagrangian

import (
	"fmt"
	"sync"
)

// The compiled systems are memoized per form identity: compilation is pure,
// so the table is append-only with compute-once-per-key semantics and never
// invalidated for the process lifetime.

type cacheEntry struct {
	once sync.Once
	sys  *System
	err  error
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*cacheEntry{}

	// compiles counts actual derivations, for tests.
	compiles int
)

// Compile returns the compiled ODE system for a form. The first call per
// form performs the derivation; subsequent calls return the cached system.
// A form whose equations cannot be solved for the leading derivatives is a
// fatal configuration error.
func Compile(f Form) (*System, error) {
	if f.derive == nil {
		return nil, fmt.Errorf("lagrangian form %q has no derivation", f.name)
	}

	cacheMu.Lock()
	e, ok := cache[f.name]
	if !ok {
		e = &cacheEntry{}
		cache[f.name] = e
	}
	cacheMu.Unlock()

	e.once.Do(func() {
		compiles++
		e.sys, e.err = f.derive()
		if e.err == nil && e.sys == nil {
			e.err = fmt.Errorf("lagrangian form %q: singular system, cannot solve for leading derivatives", f.name)
		}
	})
	return e.sys, e.err
}
