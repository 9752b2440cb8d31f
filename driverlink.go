package wmediumd

//
// DriverLink: the bidirectional channel to the host driver
//

import (
	"context"
	"errors"
	"fmt"

	"github.com/wmediumd-go/wmediumd/internal/genl"
)

// DriverLink is the bidirectional channel to the host simulated-radio
// driver: it receives TX_FRAME requests and sends RX_FRAME deliveries and
// TX_STATUS completions, after a one-shot REGISTER at startup.
//
// Send failures are logged and dropped by implementations' callers; they
// never abort the pipeline. The link is single-threaded: all sends and
// receives happen on the one event-loop goroutine that owns a DriverLink
// (see Medium.Run).
type DriverLink interface {
	// Register sends the one-shot "register for frame events" command.
	// Failure is fatal at startup.
	Register() error

	// Recv blocks until the next TX_FRAME request arrives, or ctx is
	// canceled. Malformed inbound messages are logged and skipped
	// internally; Recv only returns once it has a usable request or a
	// fatal transport error.
	Recv(ctx context.Context) (*TXFrameRequest, error)

	// SendRX sends one delivered-copy notification. Best-effort.
	SendRX(dst Address, frame Frame, rateIdx int32, signal int32) error

	// SendStatus sends the end-of-life report for an inbound frame.
	// Best-effort.
	SendStatus(src Address, frame Frame, flags uint32, signal int32, log AttemptLog, cookie Cookie) error

	// Close releases the underlying transport.
	Close() error
}

// genlDriverLink is the production [DriverLink], backed by a generic
// netlink connection to the HWSIM family.
type genlDriverLink struct {
	conn   *genl.Conn
	codec  FrameCodec
	logger Logger
}

var _ DriverLink = &genlDriverLink{}

// NewGenlDriverLink opens a generic netlink socket, resolves the HWSIM
// family, and returns a [DriverLink] ready for [DriverLink.Register]. Wraps
// [ErrDriverUnavailable] on failure.
func NewGenlDriverLink(logger Logger) (DriverLink, error) {
	sock, err := genl.Dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDriverUnavailable, err.Error())
	}
	conn, err := genl.NewConn(sock, HWSIMFamilyName)
	if err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%w: %s", ErrDriverUnavailable, err.Error())
	}
	return &genlDriverLink{conn: conn, logger: logger}, nil
}

// Register implements [DriverLink].
func (l *genlDriverLink) Register() error {
	msg := genl.Message{Command: uint8(CmdRegister), GenlVersion: 1}
	if err := l.conn.Send(msg); err != nil {
		return fmt.Errorf("%w: register: %s", ErrDriverUnavailable, err.Error())
	}
	return nil
}

// Recv implements [DriverLink]. It keeps reading and dropping malformed
// messages until it sees a usable TX_FRAME, matching the codec's documented
// "drop, log, keep going" policy for per-message errors. ctx is checked
// before each socket read; a read already blocked in the socket is not
// interrupted by cancellation, so Recv returns only once the next message
// arrives or the socket fails.
func (l *genlDriverLink) Recv(ctx context.Context) (*TXFrameRequest, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := l.conn.Recv()
		if err != nil {
			if errors.Is(err, genl.ErrShortMessage) {
				l.logger.Warnf("wmediumd: dropping malformed netlink message: %s", err.Error())
				continue
			}
			return nil, fmt.Errorf("wmediumd: driver link: recv: %w", err)
		}
		if Command(msg.Command) != CmdTXFrame {
			continue
		}
		req, err := l.codec.DecodeTXFrame(msg)
		if err != nil {
			l.logger.Warnf("wmediumd: dropping malformed TX_FRAME: %s", err.Error())
			continue
		}
		return req, nil
	}
}

// SendRX implements [DriverLink].
func (l *genlDriverLink) SendRX(dst Address, frame Frame, rateIdx int32, signal int32) error {
	msg := l.codec.EncodeRXFrame(dst, frame, rateIdx, signal)
	if err := l.conn.Send(*msg); err != nil {
		return fmt.Errorf("%w: %s", ErrSendFailed, err.Error())
	}
	return nil
}

// SendStatus implements [DriverLink].
func (l *genlDriverLink) SendStatus(
	src Address,
	frame Frame,
	flags uint32,
	signal int32,
	log AttemptLog,
	cookie Cookie,
) error {
	msg := l.codec.EncodeTXStatus(src, frame, flags, signal, log, cookie)
	if err := l.conn.Send(*msg); err != nil {
		return fmt.Errorf("%w: %s", ErrSendFailed, err.Error())
	}
	return nil
}

// Close implements [DriverLink].
func (l *genlDriverLink) Close() error {
	return l.conn.Close()
}

// errFakeDriverLinkClosed is returned by [FakeDriverLink] methods called
// after [FakeDriverLink.Close].
var errFakeDriverLinkClosed = errors.New("wmediumd: fake driver link closed")

// FakeRXEvent records one call to [FakeDriverLink.SendRX], for assertions in
// tests.
type FakeRXEvent struct {
	Dst     Address
	Frame   Frame
	RateIdx int32
	Signal  int32
}

// FakeStatusEvent records one call to [FakeDriverLink.SendStatus], for
// assertions in tests.
type FakeStatusEvent struct {
	Src    Address
	Frame  Frame
	Flags  uint32
	Signal int32
	Log    AttemptLog
	Cookie Cookie
}

// FakeDriverLink is an in-memory [DriverLink] test double: a queue of up to
// 64 inbound requests fed by [FakeDriverLink.Enqueue] (which blocks while the
// queue is full), and a recorded
// history of outbound sends. It never touches a real socket, so unit and
// property tests can drive [Medium] end to end.
type FakeDriverLink struct {
	registered bool
	incoming   chan *TXFrameRequest
	closed     chan struct{}

	RXEvents     []FakeRXEvent
	StatusEvents []FakeStatusEvent

	// SendRXErr, when non-nil, is returned by every SendRX call instead of
	// recording an event, to exercise the pipeline's send-failure path.
	SendRXErr error

	// SendStatusErr, when non-nil, is returned by every SendStatus call
	// instead of recording an event.
	SendStatusErr error
}

var _ DriverLink = &FakeDriverLink{}

// NewFakeDriverLink returns a ready-to-use [FakeDriverLink].
func NewFakeDriverLink() *FakeDriverLink {
	return &FakeDriverLink{
		incoming: make(chan *TXFrameRequest, 64),
		closed:   make(chan struct{}),
	}
}

// Enqueue makes req the next value [FakeDriverLink.Recv] returns.
func (f *FakeDriverLink) Enqueue(req *TXFrameRequest) {
	f.incoming <- req
}

// Register implements [DriverLink].
func (f *FakeDriverLink) Register() error {
	f.registered = true
	return nil
}

// Registered reports whether [FakeDriverLink.Register] was called.
func (f *FakeDriverLink) Registered() bool {
	return f.registered
}

// Recv implements [DriverLink].
func (f *FakeDriverLink) Recv(ctx context.Context) (*TXFrameRequest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.closed:
		return nil, errFakeDriverLinkClosed
	case req := <-f.incoming:
		return req, nil
	}
}

// SendRX implements [DriverLink].
func (f *FakeDriverLink) SendRX(dst Address, frame Frame, rateIdx int32, signal int32) error {
	if f.SendRXErr != nil {
		return f.SendRXErr
	}
	f.RXEvents = append(f.RXEvents, FakeRXEvent{Dst: dst, Frame: frame, RateIdx: rateIdx, Signal: signal})
	return nil
}

// SendStatus implements [DriverLink].
func (f *FakeDriverLink) SendStatus(
	src Address,
	frame Frame,
	flags uint32,
	signal int32,
	log AttemptLog,
	cookie Cookie,
) error {
	if f.SendStatusErr != nil {
		return f.SendStatusErr
	}
	f.StatusEvents = append(f.StatusEvents, FakeStatusEvent{
		Src: src, Frame: frame, Flags: flags, Signal: signal, Log: log, Cookie: cookie,
	})
	return nil
}

// Close implements [DriverLink].
func (f *FakeDriverLink) Close() error {
	select {
	case <-f.closed:
		// already closed
	default:
		close(f.closed)
	}
	return nil
}
