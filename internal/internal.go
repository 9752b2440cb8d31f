// Package internal contains internal implementation details shared across
// the wmediumd packages.
package internal

import "github.com/wmediumd-go/wmediumd"

// NullLogger is a [wmediumd.Logger] that does not emit logs, used by
// pcapdump.New as the default when a caller passes a nil logger.
type NullLogger struct{}

// Debug implements wmediumd.Logger.
func (nl NullLogger) Debug(message string) {
	// nothing
}

// Debugf implements wmediumd.Logger.
func (nl NullLogger) Debugf(format string, v ...any) {
	// nothing
}

// Info implements wmediumd.Logger.
func (nl NullLogger) Info(message string) {
	// nothing
}

// Infof implements wmediumd.Logger.
func (nl NullLogger) Infof(format string, v ...any) {
	// nothing
}

// Warn implements wmediumd.Logger.
func (nl NullLogger) Warn(message string) {
	// nothing
}

// Warnf implements wmediumd.Logger.
func (nl NullLogger) Warnf(format string, v ...any) {
	// nothing
}

var _ wmediumd.Logger = NullLogger{}
