package wmediumd

//
// Data model shared across the pipeline
//

import "errors"

// Logger is the logger used throughout this package. Its shape matches
// github.com/apex/log's, which is the production implementation wired in by
// cmd/wmediumd.
type Logger interface {
	// Debugf formats and emits a debug message.
	Debugf(format string, v ...any)

	// Debug emits a debug message.
	Debug(message string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...any)

	// Info emits an informational message.
	Info(message string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...any)

	// Warn emits a warning message.
	Warn(message string)
}

// MaxRatesPerTX is the maximum number of (rate, retry) entries a schedule
// or attempt log can carry, matching IEEE80211_MAX_RATES_PER_TX.
const MaxRatesPerTX = 4

// NumRates is the number of entries in [RateSignalTable], i.e. the
// reference deployment's R.
const NumRates = 12

// InvalidRateIndex is the sentinel rate index meaning "this schedule or
// attempt-log slot was never populated".
const InvalidRateIndex int32 = -1

// MinFrameLength is the minimum length of a [Frame] (the 802.11 MAC header).
const MinFrameLength = 24

// Frame is an opaque 802.11 frame the driver wants transmitted. The core
// only ever reads the destination address (addr1); everything else,
// including the rest of the MAC header, is forwarded byte for byte.
type Frame struct {
	// Bytes is the raw frame, at least [MinFrameLength] bytes long.
	Bytes []byte
}

// ErrFrameTooShort indicates that a frame is shorter than [MinFrameLength].
var ErrFrameTooShort = errors.New("wmediumd: frame shorter than the 802.11 MAC header")
