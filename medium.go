package wmediumd

//
// Medium: the transmission pipeline
//

import (
	"context"
	"errors"
)

// Medium is the transmission pipeline: for each inbound TX_FRAME it walks
// the driver-supplied rate-retry schedule against a [Topology], drawing
// from a [RandomSource] to decide per-attempt delivery, and reports the
// outcome back over a [DriverLink].
//
// A Medium is built once for the process lifetime and is not safe for
// concurrent use: [Medium.Run] is the only intended caller of
// [Medium.ProcessTX], and the single-threaded event-loop model means there
// is never more than one frame in flight.
type Medium struct {
	topology  *Topology
	random    RandomSource
	rateModel RateModel
	link      DriverLink
	metrics   *Metrics
	logger    Logger
}

// NewMedium builds a [Medium] over topology, drawing losses from random and
// driving link, recording activity into metrics and logger.
func NewMedium(topology *Topology, random RandomSource, link DriverLink, metrics *Metrics, logger Logger) *Medium {
	return &Medium{
		topology: topology,
		random:   random,
		link:     link,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run registers with the driver and then blocks, processing one TX_FRAME to
// completion at a time, until ctx is canceled or the driver link fails.
// This is the system's only suspension point: there is no cooperative
// suspension inside [Medium.ProcessTX].
func (m *Medium) Run(ctx context.Context) error {
	if err := m.link.Register(); err != nil {
		return err
	}
	for {
		req, err := m.link.Recv(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		m.ProcessTX(req)
	}
}

// ProcessTX consumes one decoded TX_FRAME request and emits zero or more
// RX_FRAME deliveries followed by exactly one TX_STATUS. It never returns
// an error: codec-level problems were already filtered out by the caller,
// and send failures are logged and absorbed so that one frame's transport
// trouble never poisons the next.
func (m *Medium) ProcessTX(req *TXFrameRequest) {
	m.metrics.Received++

	dst1, err := Addr1(req.Frame)
	if err != nil {
		// No attempts are made, but the driver still gets its TX_STATUS:
		// flags unchanged, signal 0, and an all-invalid attempt log.
		m.logger.Warnf("wmediumd: medium: not transmitting frame with unparseable addr1: %s", err.Error())
		if err := m.link.SendStatus(req.Src, req.Frame, req.Flags, 0, newInvalidAttemptLog(), req.Cookie); err != nil {
			m.logger.Warnf("wmediumd: medium: send status for %s failed: %s", req.Src, err.Error())
		}
		return
	}

	// The loss tensor is keyed by radio index, not address. When src isn't
	// part of the topology there is no row to look up by rights, but the
	// pipeline still has to run (every other radio is still an eligible
	// peer, since none of their indices equal a nonexistent src index), so
	// row 0 stands in: which row is used cannot matter once src matches no
	// address in the topology.
	lossRow := 0
	if idx, found := m.topology.Lookup(req.Src); found {
		lossRow = idx
	}

	log := newInvalidAttemptLog()
	acked := false

	for r := 0; r < MaxRatesPerTX; r++ {
		entry := req.Schedule[r]
		if entry.RateIdx == InvalidRateIndex || acked {
			break
		}
		log[r].RateIdx = entry.RateIdx
		log[r].Flags = entry.Flags

		for k := uint8(1); k <= entry.MaxAttempts; k++ {
			if acked {
				break
			}
			for j := 0; j < m.topology.N(); j++ {
				dstAddr := m.topology.AddressOf(j)
				if dstAddr == req.Src {
					continue
				}
				draw := m.random.Next()
				if draw < m.topology.Loss(int(entry.RateIdx), lossRow, j) {
					m.metrics.Dropped++
					continue
				}
				signal := m.rateModel.SignalFor(entry.RateIdx)
				if err := m.link.SendRX(dstAddr, req.Frame, entry.RateIdx, signal); err != nil {
					m.logger.Warnf("wmediumd: medium: send rx to %s failed: %s", dstAddr, err.Error())
				} else {
					m.metrics.SentCopies++
				}
				if dstAddr == dst1 {
					acked = true
				}
			}
			log[r].AttemptsUsed = k
		}
	}

	flags := req.Flags
	signal := int32(0)
	if last := log.lastValidIndex(); acked && last >= 0 {
		flags |= StatACK
		signal = m.rateModel.SignalFor(log[last].RateIdx)
		m.metrics.Acked++
	}

	if err := m.link.SendStatus(req.Src, req.Frame, flags, signal, log, req.Cookie); err != nil {
		m.logger.Warnf("wmediumd: medium: send status for %s failed: %s", req.Src, err.Error())
	}
}
