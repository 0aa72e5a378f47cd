// Package monitoring holds the process-wide operational logger shared by the
// storage, replay and command layers.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...any) = log.Printf

var mu sync.Mutex

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}

// WriterLogger returns a logger function writing to w with the given prefix
// and standard date/time flags. A nil w yields a no-op logger.
func WriterLogger(w io.Writer, prefix string) func(format string, v ...any) {
	if w == nil {
		return func(string, ...any) {}
	}
	l := log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
	return l.Printf
}
