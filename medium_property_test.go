package wmediumd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// orderedEvent is either a delivered copy or the closing status, recorded in
// call order so property tests can check cross-event ordering without
// relying on two separate slices staying in sync.
type orderedEvent struct {
	isStatus bool
	rx       FakeRXEvent
	status   FakeStatusEvent
}

// orderedLink is a [DriverLink] double that records every send into one
// timeline, the minimal extension over [FakeDriverLink] the ordering
// properties need.
type orderedLink struct {
	*FakeDriverLink
	timeline []orderedEvent
}

func newOrderedLink() *orderedLink {
	return &orderedLink{FakeDriverLink: NewFakeDriverLink()}
}

func (l *orderedLink) SendRX(dst Address, frame Frame, rateIdx int32, signal int32) error {
	if err := l.FakeDriverLink.SendRX(dst, frame, rateIdx, signal); err != nil {
		return err
	}
	l.timeline = append(l.timeline, orderedEvent{rx: FakeRXEvent{Dst: dst, Frame: frame, RateIdx: rateIdx, Signal: signal}})
	return nil
}

func (l *orderedLink) SendStatus(src Address, frame Frame, flags uint32, signal int32, log AttemptLog, cookie Cookie) error {
	if err := l.FakeDriverLink.SendStatus(src, frame, flags, signal, log, cookie); err != nil {
		return err
	}
	l.timeline = append(l.timeline, orderedEvent{
		isStatus: true,
		status:   FakeStatusEvent{Src: src, Frame: frame, Flags: flags, Signal: signal, Log: log, Cookie: cookie},
	})
	return nil
}

// genTopology draws a small topology (2..5 radios, 1..3 rates) with every
// loss cell drawn independently from [0,1].
func genTopology(t *rapid.T) *Topology {
	n := rapid.IntRange(2, 5).Draw(t, "n")
	rates := rapid.IntRange(1, 3).Draw(t, "rates")
	addrs := make([]Address, n)
	for i := range addrs {
		addrs[i] = Address{0x42, 0, 0, 0, byte(i), 0}
	}
	loss := make([][]float64, rates)
	for r := range loss {
		row := make([]float64, n*n)
		for i := range row {
			row[i] = rapid.Float64Range(0, 1).Draw(t, "p")
		}
		loss[r] = row
	}
	topo, err := NewTopology(TopologyConfig{Addresses: addrs, Rates: rates, Loss: loss})
	if err != nil {
		t.Fatalf("generated topology rejected: %s", err)
	}
	return topo
}

// genSchedule draws a schedule with 0..MaxRatesPerTX active entries.
func genSchedule(t *rapid.T, rates int) RateRetrySchedule {
	sched := NewEmptySchedule()
	active := rapid.IntRange(0, MaxRatesPerTX).Draw(t, "active")
	for i := 0; i < active; i++ {
		sched[i] = ScheduleEntry{
			RateIdx:     int32(rapid.IntRange(0, rates-1).Draw(t, "rateIdx")),
			Flags:       uint32(rapid.IntRange(0, 0xFF).Draw(t, "flags")),
			MaxAttempts: uint8(rapid.IntRange(1, 3).Draw(t, "maxAttempts")),
		}
	}
	return sched
}

func genDraws(t *rapid.T) []float64 {
	return rapid.SliceOfN(rapid.Float64Range(0, 1), 1, 64).Draw(t, "draws")
}

// TestPropertyExactlyOneStatus checks that exactly one TX_STATUS is
// emitted, and that it is the last event on the timeline.
func TestPropertyExactlyOneStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topo := genTopology(t)
		link := newOrderedLink()
		medium := NewMedium(topo, NewFixedRandomSource(genDraws(t)), link, &Metrics{}, quietLogger{})

		medium.ProcessTX(&TXFrameRequest{
			Src:      topo.AddressOf(0),
			Frame:    dataFrameTo(topo.AddressOf(topo.N() - 1)),
			Schedule: genSchedule(t, topo.Rates()),
		})

		assert.Len(t, link.StatusEvents, 1)
		if len(link.timeline) > 0 {
			assert.True(t, link.timeline[len(link.timeline)-1].isStatus, "status must be the last event")
		}
		for _, ev := range link.timeline[:len(link.timeline)-1] {
			assert.False(t, ev.isStatus, "only the final event may be a status")
		}
	})
}

// TestPropertyNoSelfDelivery checks that a transmitter never receives its
// own frame back as an RX_FRAME delivery.
func TestPropertyNoSelfDelivery(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topo := genTopology(t)
		src := topo.AddressOf(rapid.IntRange(0, topo.N()-1).Draw(t, "srcIdx"))
		link := newOrderedLink()
		medium := NewMedium(topo, NewFixedRandomSource(genDraws(t)), link, &Metrics{}, quietLogger{})

		medium.ProcessTX(&TXFrameRequest{
			Src:      src,
			Frame:    dataFrameTo(topo.AddressOf(topo.N() - 1)),
			Schedule: genSchedule(t, topo.Rates()),
		})

		for _, ev := range link.RXEvents {
			assert.NotEqual(t, src, ev.Dst)
		}
	})
}

// TestPropertyACKConsistency checks that the ACK flag on TX_STATUS is set
// if and only if the intended destination actually received a copy.
func TestPropertyACKConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topo := genTopology(t)
		dst1 := topo.AddressOf(rapid.IntRange(0, topo.N()-1).Draw(t, "dst1Idx"))
		link := newOrderedLink()
		medium := NewMedium(topo, NewFixedRandomSource(genDraws(t)), link, &Metrics{}, quietLogger{})

		medium.ProcessTX(&TXFrameRequest{
			Src:      topo.AddressOf(0),
			Frame:    dataFrameTo(dst1),
			Schedule: genSchedule(t, topo.Rates()),
		})

		deliveredToIntended := false
		for _, ev := range link.RXEvents {
			if ev.Dst == dst1 {
				deliveredToIntended = true
			}
		}

		acked := len(link.StatusEvents) == 1 && link.StatusEvents[0].Flags&StatACK != 0
		assert.Equal(t, deliveredToIntended, acked)
	})
}

// TestPropertyDeterminism checks that the same topology and a fresh replay
// of the same draw sequence always produces the same timeline.
func TestPropertyDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topo := genTopology(t)
		draws := genDraws(t)
		sched := genSchedule(t, topo.Rates())
		src := topo.AddressOf(0)
		frame := dataFrameTo(topo.AddressOf(topo.N() - 1))

		runOnce := func() *orderedLink {
			link := newOrderedLink()
			medium := NewMedium(topo, NewFixedRandomSource(draws), link, &Metrics{}, quietLogger{})
			medium.ProcessTX(&TXFrameRequest{Src: src, Frame: frame, Schedule: sched})
			return link
		}

		a, b := runOnce(), runOnce()
		assert.Equal(t, a.RXEvents, b.RXEvents)
		assert.Equal(t, a.StatusEvents, b.StatusEvents)
	})
}

// TestPropertyAttemptLogFaithful checks that attempts_used never exceeds
// max_attempts, and that untouched slots stay at the sentinel.
func TestPropertyAttemptLogFaithful(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topo := genTopology(t)
		sched := genSchedule(t, topo.Rates())
		link := newOrderedLink()
		medium := NewMedium(topo, NewFixedRandomSource(genDraws(t)), link, &Metrics{}, quietLogger{})

		medium.ProcessTX(&TXFrameRequest{
			Src:      topo.AddressOf(0),
			Frame:    dataFrameTo(topo.AddressOf(topo.N() - 1)),
			Schedule: sched,
		})

		log := link.StatusEvents[0].Log
		for i, entry := range log {
			if sched[i].RateIdx == InvalidRateIndex {
				assert.EqualValues(t, InvalidRateIndex, entry.RateIdx)
				assert.EqualValues(t, 0, entry.AttemptsUsed)
				continue
			}
			assert.LessOrEqual(t, entry.AttemptsUsed, sched[i].MaxAttempts)
		}
	})
}

// TestPropertyLossMonotone checks the loss-probability boundaries: 0 always
// delivers, 1 never does.
func TestPropertyLossMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 4).Draw(t, "n")
		addrs := make([]Address, n)
		for i := range addrs {
			addrs[i] = Address{0x42, 0, 0, 0, byte(i), 0}
		}
		allLoss := rapid.Bool().Draw(t, "allLoss")
		row := make([]float64, n*n)
		for i := range row {
			if allLoss {
				row[i] = 1.0
			}
		}
		topo, err := NewTopology(TopologyConfig{Addresses: addrs, Rates: 1, Loss: [][]float64{row}})
		if err != nil {
			t.Fatalf("unexpected: %s", err)
		}

		link := newOrderedLink()
		medium := NewMedium(topo, NewFixedRandomSource([]float64{0.0}), link, &Metrics{}, quietLogger{})
		medium.ProcessTX(&TXFrameRequest{
			Src:      addrs[0],
			Frame:    dataFrameTo(addrs[n-1]),
			Schedule: schedule(ScheduleEntry{RateIdx: 0, Flags: 0, MaxAttempts: 1}),
		})

		if allLoss {
			assert.Empty(t, link.RXEvents)
			assert.Equal(t, uint32(0), link.StatusEvents[0].Flags)
		} else {
			assert.Len(t, link.RXEvents, n-1)
			assert.NotZero(t, link.StatusEvents[0].Flags&StatACK)
		}
	})
}

// quietLogger discards everything, for property tests that run the
// pipeline thousands of times and don't want per-iteration log noise.
type quietLogger struct{}

func (quietLogger) Debugf(format string, v ...any) {}
func (quietLogger) Debug(message string)           {}
func (quietLogger) Infof(format string, v ...any)  {}
func (quietLogger) Info(message string)            {}
func (quietLogger) Warnf(format string, v ...any)  {}
func (quietLogger) Warn(message string)            {}
