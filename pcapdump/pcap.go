// Package pcapdump optionally records every frame crossing a
// [wmediumd.DriverLink] to a pcap file, for offline inspection with
// Wireshark/tcpdump.
package pcapdump

//
// PCAP dumper, wrapping a DriverLink
//

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/wmediumd-go/wmediumd"
	"github.com/wmediumd-go/wmediumd/internal"
)

// Dumper wraps a [wmediumd.DriverLink] and writes every frame that flows
// across it, inbound TX_FRAME payloads and outbound RX_FRAME deliveries
// alike, to a pcap file with an 802.11 link type. A background goroutine
// drains a bounded channel of packet snapshots so capture never blocks the
// event loop; a non-blocking send drops packets instead of backing up when
// the writer falls behind.
type Dumper struct {
	cancel    context.CancelFunc
	closeOnce sync.Once
	joined    chan struct{}
	link      wmediumd.DriverLink
	logger    wmediumd.Logger
	pich      chan packetInfo
}

type packetInfo struct {
	length   int
	snapshot []byte
}

var _ wmediumd.DriverLink = &Dumper{}

// captureLength caps how much of each frame is retained in the trace.
const captureLength = 512

// New wraps link, writing every frame it carries to filename in pcap
// format. Call [Dumper.Close] to stop and join the background writer.
func New(filename string, link wmediumd.DriverLink, logger wmediumd.Logger) *Dumper {
	if logger == nil {
		logger = internal.NullLogger{}
	}
	const manyPackets = 4096
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dumper{
		cancel: cancel,
		joined: make(chan struct{}),
		link:   link,
		logger: logger,
		pich:   make(chan packetInfo, manyPackets),
	}
	go d.loop(ctx, filename)
	return d
}

// Register implements [wmediumd.DriverLink].
func (d *Dumper) Register() error {
	return d.link.Register()
}

// Recv implements [wmediumd.DriverLink].
func (d *Dumper) Recv(ctx context.Context) (*wmediumd.TXFrameRequest, error) {
	req, err := d.link.Recv(ctx)
	if err != nil {
		return nil, err
	}
	d.capture(req.Frame.Bytes)
	return req, nil
}

// SendRX implements [wmediumd.DriverLink].
func (d *Dumper) SendRX(dst wmediumd.Address, frame wmediumd.Frame, rateIdx int32, signal int32) error {
	d.capture(frame.Bytes)
	return d.link.SendRX(dst, frame, rateIdx, signal)
}

// SendStatus implements [wmediumd.DriverLink]. TX_STATUS carries no new
// frame bytes (it echoes the already-captured TX_FRAME payload), so it is
// passed through without a second capture.
func (d *Dumper) SendStatus(
	src wmediumd.Address,
	frame wmediumd.Frame,
	flags uint32,
	signal int32,
	log wmediumd.AttemptLog,
	cookie wmediumd.Cookie,
) error {
	return d.link.SendStatus(src, frame, flags, signal, log, cookie)
}

// Close implements [wmediumd.DriverLink]: it stops the background writer,
// waits for it to close the file, then closes the wrapped link. Packets
// still queued for the writer when Close is called are not written.
func (d *Dumper) Close() error {
	d.closeOnce.Do(func() {
		d.cancel()
		<-d.joined
	})
	return d.link.Close()
}

// capture snapshots frame (up to [captureLength] bytes) and hands it to the
// background writer, dropping it from the trace if the writer is behind.
func (d *Dumper) capture(frame []byte) {
	n := len(frame)
	if n > captureLength {
		n = captureLength
	}
	info := packetInfo{length: len(frame), snapshot: append([]byte(nil), frame[:n]...)}
	select {
	case d.pich <- info:
	default:
		// dropped from the capture
	}
}

// loop owns the pcap file for its entire lifetime, from creation to the
// final flush on Close.
func (d *Dumper) loop(ctx context.Context, filename string) {
	defer close(d.joined)

	filep, err := os.Create(filename)
	if err != nil {
		d.logger.Warnf("pcapdump: os.Create: %s", err.Error())
		return
	}
	defer func() {
		if err := filep.Close(); err != nil {
			d.logger.Warnf("pcapdump: filep.Close: %s", err.Error())
		}
	}()

	w := pcapgo.NewWriter(filep)
	const snapLen = 262144
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeIEEE802_11); err != nil {
		d.logger.Warnf("pcapdump: WriteFileHeader: %s", err.Error())
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case info := <-d.pich:
			ci := gopacket.CaptureInfo{
				Timestamp:     time.Now(),
				CaptureLength: len(info.snapshot),
				Length:        info.length,
			}
			if err := w.WritePacket(ci, info.snapshot); err != nil {
				d.logger.Warnf("pcapdump: WritePacket: %s", err.Error())
			}
		}
	}
}
