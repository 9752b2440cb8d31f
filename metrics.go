package wmediumd

//
// Process-wide mutable counters and status summaries
//

import "github.com/montanaflynn/stats"

// Metrics holds the small set of running counters the original status line
// displays: how many TX_FRAME requests came in, how many per-radio copies
// were sent out, how many were dropped to loss, and how many frames were
// ultimately acknowledged. Only the single event-loop goroutine that owns a
// Metrics value may mutate it (spec design note: "process-wide mutable
// counters"), so no locking is required.
type Metrics struct {
	// Received counts accepted inbound TX_FRAME requests.
	Received uint64

	// SentCopies counts individual RX_FRAME deliveries emitted.
	SentCopies uint64

	// Dropped counts individual per-attempt deliveries lost to the loss model.
	Dropped uint64

	// Acked counts inbound frames whose TX_STATUS carried the ACK bit.
	Acked uint64
}

// Snapshot is an immutable copy of a [Metrics] at one instant.
type Snapshot struct {
	Received   uint64
	SentCopies uint64
	Dropped    uint64
	Acked      uint64
}

// Snapshot copies m's current counters out.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Received:   m.Received,
		SentCopies: m.SentCopies,
		Dropped:    m.Dropped,
		Acked:      m.Acked,
	}
}

// ackRate returns the fraction of received frames that were acked, or 0 if
// none were received yet.
func (s Snapshot) ackRate() float64 {
	if s.Received == 0 {
		return 0
	}
	return float64(s.Acked) / float64(s.Received)
}

// Summary is a human-readable digest of how the ACK rate moved across a
// sequence of snapshots.
type Summary struct {
	// Samples is how many snapshots contributed to this summary.
	Samples int

	// MedianAckRate is the median of the per-snapshot ACK rate.
	MedianAckRate float64

	// P90AckRate is the 90th percentile of the per-snapshot ACK rate.
	P90AckRate float64
}

// Summarize computes a [Summary] over history: the median and 90th
// percentile of the per-snapshot ACK rate, via github.com/montanaflynn/stats.
// Returns the zero [Summary] if history is empty.
func Summarize(history []Snapshot) Summary {
	if len(history) == 0 {
		return Summary{}
	}
	rates := make([]float64, len(history))
	for i, snap := range history {
		rates[i] = snap.ackRate()
	}
	median, err := stats.Median(rates)
	if err != nil {
		median = 0
	}
	p90, err := stats.Percentile(rates, 90)
	if err != nil {
		p90 = 0
	}
	return Summary{
		Samples:       len(history),
		MedianAckRate: median,
		P90AckRate:    p90,
	}
}
