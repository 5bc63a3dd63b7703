package logger

import (
	"slices"
	"sync"
)

// Named loggers let an application route one client's logs differently from
// the rest, e.g. a debug-level logger for a single upstream.
var named = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores a logger under name, replacing any previous one.
func Register(name string, l *Logger) {
	named.mu.Lock()
	defer named.mu.Unlock()
	named.loggers[name] = l
}

// Unregister removes the logger stored under name.
func Unregister(name string) {
	named.mu.Lock()
	defer named.mu.Unlock()
	delete(named.loggers, name)
}

// Get returns the logger registered under name. Unknown names get the
// global logger tagged with client=name.
func Get(name string) *Logger {
	named.mu.RLock()
	l, ok := named.loggers[name]
	named.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithFields(map[string]any{FieldClient: name})
}

// Names lists the registered names in sorted order.
func Names() []string {
	named.mu.RLock()
	defer named.mu.RUnlock()
	names := make([]string, 0, len(named.loggers))
	for name := range named.loggers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
