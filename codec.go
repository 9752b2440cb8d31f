package wmediumd

//
// Driver message codec: wire (de)serialization and addr1 extraction
//

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/crypto/cryptobyte"

	"github.com/wmediumd-go/wmediumd/internal/genl"
)

// TXFrameRequest is a decoded inbound TX_FRAME request.
type TXFrameRequest struct {
	// Src is the transmitter address.
	Src Address

	// Frame is the frame to transmit.
	Frame Frame

	// Flags is the opaque 32-bit bag forwarded verbatim to TX_STATUS.
	Flags uint32

	// Schedule is the rate-retry schedule the driver wants exercised.
	Schedule RateRetrySchedule

	// Cookie is the opaque callback blob the driver requires echoed back.
	Cookie Cookie
}

// FrameCodec decodes TX_FRAME requests and encodes RX_FRAME/TX_STATUS
// replies, in the generic-netlink wire format internal/genl frames. The
// zero value is ready to use.
type FrameCodec struct{}

// DecodeTXFrame decodes msg as a TX_FRAME request. Returns
// [ErrCodecVersionMismatch] if msg declares an unsupported protocol
// version, or an [ErrCodecMissingField]-wrapped error if any required
// attribute is absent. Such a message should be dropped by the caller
// (logged, no TX_STATUS emitted), never treated as a hard failure.
func (FrameCodec) DecodeTXFrame(msg *genl.Message) (*TXFrameRequest, error) {
	if version, ok := msg.GetU32(AttrVersion); ok && version != ProtocolVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCodecVersionMismatch, version, ProtocolVersion)
	}

	rawSrc, ok := msg.Get(AttrAddrTransmitter)
	if !ok {
		return nil, fmt.Errorf("%w: missing transmitter address", ErrCodecMissingField)
	}
	src, err := addressFromBytes(rawSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCodecMissingField, err.Error())
	}

	rawFrame, ok := msg.Get(AttrFrame)
	if !ok {
		return nil, fmt.Errorf("%w: missing frame bytes", ErrCodecMissingField)
	}
	if len(rawFrame) < MinFrameLength {
		return nil, fmt.Errorf("%w: %w", ErrCodecMissingField, ErrFrameTooShort)
	}

	flags, ok := msg.GetU32(AttrFlags)
	if !ok {
		return nil, fmt.Errorf("%w: missing flags", ErrCodecMissingField)
	}

	rawSchedule, ok := msg.Get(AttrTXInfo)
	if !ok {
		return nil, fmt.Errorf("%w: missing rate-retry schedule", ErrCodecMissingField)
	}
	schedule, err := decodeSchedule(rawSchedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCodecMissingField, err.Error())
	}

	rawCookie, ok := msg.Get(AttrCookie)
	if !ok {
		return nil, fmt.Errorf("%w: missing callback cookie", ErrCodecMissingField)
	}
	if len(rawCookie) != CookieSize {
		return nil, fmt.Errorf("%w: cookie has wrong size %d", ErrCodecMissingField, len(rawCookie))
	}
	var cookie Cookie
	copy(cookie[:], rawCookie)

	return &TXFrameRequest{
		Src:      src,
		Frame:    Frame{Bytes: append([]byte(nil), rawFrame...)},
		Flags:    flags,
		Schedule: schedule,
		Cookie:   cookie,
	}, nil
}

// EncodeRXFrame builds the RX_FRAME message reporting a delivered copy.
func (FrameCodec) EncodeRXFrame(dst Address, frame Frame, rateIdx int32, signal int32) *genl.Message {
	msg := &genl.Message{Command: uint8(CmdRXFrame)}
	msg.PutU32(AttrVersion, ProtocolVersion)
	msg.PutBytes(AttrAddrReceiver, dst[:])
	msg.PutBytes(AttrFrame, frame.Bytes)
	msg.PutU32(AttrRXRate, uint32(rateIdx))
	msg.PutU32(AttrSignal, uint32(signal))
	return msg
}

// EncodeTXStatus builds the TX_STATUS message closing out an inbound
// frame's processing.
func (FrameCodec) EncodeTXStatus(
	src Address,
	frame Frame,
	flags uint32,
	signal int32,
	log AttemptLog,
	cookie Cookie,
) *genl.Message {
	msg := &genl.Message{Command: uint8(CmdTXStatus)}
	msg.PutU32(AttrVersion, ProtocolVersion)
	msg.PutBytes(AttrAddrTransmitter, src[:])
	msg.PutBytes(AttrFrame, frame.Bytes)
	msg.PutU32(AttrFlags, flags)
	msg.PutU32(AttrSignal, uint32(signal))
	msg.PutBytes(AttrTXInfo, encodeAttemptLog(log))
	msg.PutBytes(AttrCookie, cookie[:])
	return msg
}

// addressFromBytes validates and converts a raw attribute value into an
// [Address].
func addressFromBytes(raw []byte) (Address, error) {
	if len(raw) != AddressSize {
		return Address{}, fmt.Errorf("address has wrong size %d", len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// decodeSchedule decodes the TX_INFO attribute into a [RateRetrySchedule]:
// [MaxRatesPerTX] fixed (i8 idx, u8 count, u32 flags) entries back to back,
// read with golang.org/x/crypto/cryptobyte's bounds-checked cursor instead
// of hand-rolled offset arithmetic.
func decodeSchedule(raw []byte) (RateRetrySchedule, error) {
	sched := NewEmptySchedule()
	s := cryptobyte.String(raw)
	for i := 0; i < MaxRatesPerTX; i++ {
		var idx, count uint8
		var flags uint32
		if !s.ReadUint8(&idx) || !s.ReadUint8(&count) || !s.ReadUint32(&flags) {
			return sched, fmt.Errorf("rate schedule entry %d truncated", i)
		}
		sched[i] = ScheduleEntry{RateIdx: int32(int8(idx)), Flags: flags, MaxAttempts: count}
	}
	if !s.Empty() {
		return sched, fmt.Errorf("rate schedule has %d trailing bytes", len(s))
	}
	return sched, nil
}

// encodeAttemptLog encodes an [AttemptLog] as the TX_INFO attribute of a
// TX_STATUS message, using the same per-entry wire shape as the inbound
// rate-retry schedule, built with a cryptobyte.Builder.
func encodeAttemptLog(log AttemptLog) []byte {
	var b cryptobyte.Builder
	for _, entry := range log {
		b.AddUint8(byte(int8(entry.RateIdx)))
		b.AddUint8(entry.AttemptsUsed)
		b.AddUint32(entry.Flags)
	}
	return b.BytesOrPanic()
}

// Addr1 extracts the 802.11 destination address (addr1) from frame, the
// only part of its contents the core ever inspects, by dissecting it with
// github.com/google/gopacket's Dot11 layer.
func Addr1(frame Frame) (Address, error) {
	if len(frame.Bytes) < MinFrameLength {
		return Address{}, ErrFrameTooShort
	}
	packet := gopacket.NewPacket(frame.Bytes, layers.LayerTypeDot11, gopacket.Lazy)
	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		return Address{}, fmt.Errorf("wmediumd: codec: could not parse 802.11 header")
	}
	dot11, ok := dot11Layer.(*layers.Dot11)
	if !ok {
		return Address{}, fmt.Errorf("wmediumd: codec: unexpected 802.11 layer type")
	}
	var addr Address
	copy(addr[:], []byte(dot11.Address1))
	return addr, nil
}
