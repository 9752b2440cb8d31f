package wmediumd

//
// Error kinds
//
// Fatal-at-startup errors ([ErrTopologyInvalid] in topology.go,
// [ErrDriverUnavailable] below) abort the process with a nonzero exit
// code. Per-frame errors ([ErrCodecMissingField], [ErrCodecVersionMismatch],
// [ErrSendFailed]) are always logged or counted and never propagate to the
// next inbound frame.
//

import "errors"

// ErrDriverUnavailable indicates that the driver channel could not be
// opened or that its generic-netlink family was not found. Fatal at
// startup.
var ErrDriverUnavailable = errors.New("wmediumd: driver unavailable")

// ErrCodecMissingField indicates that an inbound TX_FRAME request was
// missing a required attribute. The codec drops the message; no status is
// emitted for it.
var ErrCodecMissingField = errors.New("wmediumd: codec: missing required field")

// ErrCodecVersionMismatch indicates that an inbound message declared a
// protocol version this codec does not understand.
var ErrCodecVersionMismatch = errors.New("wmediumd: codec: protocol version mismatch")

// ErrSendFailed indicates that the kernel rejected an outbound RX_FRAME or
// TX_STATUS message. Per-message, non-fatal: logged and dropped.
var ErrSendFailed = errors.New("wmediumd: driver link: send failed")
