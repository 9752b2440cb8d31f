package wmediumd

//
// Rate-retry schedules and attempt logs
//

// ScheduleEntry is one (rate, flags, max-attempts) slot of a
// [RateRetrySchedule]. A RateIdx of [InvalidRateIndex] terminates the
// schedule.
type ScheduleEntry struct {
	// RateIdx is the rate index to use, or [InvalidRateIndex].
	RateIdx int32

	// Flags is an opaque bag forwarded verbatim to the attempt log.
	Flags uint32

	// MaxAttempts is how many times to retry at RateIdx before advancing.
	MaxAttempts uint8
}

// RateRetrySchedule is the ordered list of rates the driver wants [Medium]
// to try, up to [MaxRatesPerTX] entries, terminated by the first entry
// whose RateIdx is [InvalidRateIndex].
type RateRetrySchedule [MaxRatesPerTX]ScheduleEntry

// NewEmptySchedule returns a schedule whose first entry is already the
// sentinel, i.e. "make no attempts at all".
func NewEmptySchedule() RateRetrySchedule {
	var sched RateRetrySchedule
	for i := range sched {
		sched[i].RateIdx = InvalidRateIndex
	}
	return sched
}

// LogEntry is one slot of an [AttemptLog]: what was actually exercised for
// the corresponding [ScheduleEntry].
type LogEntry struct {
	// RateIdx is the rate index that was tried, or [InvalidRateIndex] if
	// this slot was never reached.
	RateIdx int32

	// Flags echoes the schedule entry's flags.
	Flags uint32

	// AttemptsUsed is how many attempts were actually made at RateIdx.
	AttemptsUsed uint8
}

// AttemptLog is the parallel sequence [Medium.ProcessTX] fills in while
// walking a [RateRetrySchedule]. Entries past the last one actually
// exercised keep the starting value from newInvalidAttemptLog: RateIdx
// [InvalidRateIndex], no flags, no attempts.
type AttemptLog [MaxRatesPerTX]LogEntry

// newInvalidAttemptLog returns an [AttemptLog] with every slot set to
// (rate=-1, flags=0, attempts_used=0), the starting state for every call to
// [Medium.ProcessTX].
func newInvalidAttemptLog() AttemptLog {
	var log AttemptLog
	for i := range log {
		log[i].RateIdx = InvalidRateIndex
	}
	return log
}

// lastValidIndex returns the index of the last entry in the log whose
// RateIdx is not [InvalidRateIndex], or -1 if the log is entirely invalid
// (the empty-schedule edge case).
func (log AttemptLog) lastValidIndex() int {
	last := -1
	for i, entry := range log {
		if entry.RateIdx != InvalidRateIndex {
			last = i
		}
	}
	return last
}
