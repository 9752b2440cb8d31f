package wmediumd

//
// Driver wire protocol: message kinds and flags
//
// These mirror the generic-netlink HWSIM family wmediumd.c speaks to
// mac80211_hwsim: REGISTER (out), TX_FRAME (in), RX_FRAME and TX_STATUS
// (out). internal/genl carries the attributes below over the wire; this
// file only names the symbolic command and flag values the rest of the
// package works with.
//

// Command identifies a driver-protocol message kind.
type Command int

const (
	// CmdRegister is the one-shot "register for frame events" command.
	CmdRegister Command = iota + 1

	// CmdTXFrame is an inbound request to transmit a frame.
	CmdTXFrame

	// CmdRXFrame is an outbound delivered-copy notification.
	CmdRXFrame

	// CmdTXStatus is the outbound end-of-life report for a TX_FRAME.
	CmdTXStatus
)

// ProtocolVersion is the wire protocol version this codec speaks. Inbound
// messages declaring a different version are rejected with
// [ErrCodecVersionMismatch].
const ProtocolVersion = 1

// StatACK is the bit OR'd into TX_STATUS flags when the frame was
// acknowledged, matching IEEE80211_TX_STAT_ACK.
const StatACK uint32 = 1 << 0

// CookieSize is the size in bytes of the opaque callback cookie the driver
// requires to be echoed back verbatim in TX_STATUS, matching
// IEEE80211_CB_SIZE.
const CookieSize = 16

// Cookie is a fixed-size opaque value the core never interprets, only
// stores and echoes back (spec design note: "opaque callback cookie").
type Cookie [CookieSize]byte

// HWSIMFamilyName is the generic-netlink family name this daemon resolves
// at startup, matching wmediumd.c's genl_ctrl_search_by_name(cache,
// "HWSIM").
const HWSIMFamilyName = "HWSIM"

// Attribute type numbers for the HWSIM family, carried as genl.Attr.Type
// over the wire. Modeled on wmediumd.c's HWSIM_ATTR_* enum (the enum's
// definition lives in a kernel header outside this project's reference
// corpus, so the numbering here is this codec's own, internally consistent
// choice rather than a byte-for-byte reproduction of the upstream ABI).
const (
	AttrAddrReceiver    uint16 = 1
	AttrAddrTransmitter uint16 = 2
	AttrFrame           uint16 = 3
	AttrFlags           uint16 = 4
	AttrRXRate          uint16 = 5
	AttrSignal          uint16 = 6
	AttrTXInfo          uint16 = 7
	AttrCookie          uint16 = 8
	AttrVersion         uint16 = 9
)
