// Package wmediumd implements the transmission pipeline of a wireless
// medium simulator: the state machine that sits between several virtual
// 802.11 radios exposed by a host's simulated-radio kernel driver.
//
// The driver hands every outbound frame to user space instead of putting it
// on the air. For each such frame, [Medium.ProcessTX] walks the
// caller-supplied rate-retry schedule, consults a [Topology] for the
// per-link loss probability at each rate, and decides which of the other
// radios "hear" the frame on each attempt. Delivered copies are reported
// back to the driver as RX_FRAME events; exactly one TX_STATUS event
// always follows, carrying the attempt log and whether the frame was
// ultimately acknowledged.
//
// [Topology], [RateModel] and the other data tables are immutable once
// built and may be shared across goroutines. [Medium] itself is meant to be
// driven by a single event-loop goroutine reading from a [DriverLink], as
// documented on the [Medium] type.
//
// This package only models the pipeline. Loading a [Topology] from a
// configuration file lives in the sibling config package; talking to the
// real kernel driver over generic netlink lives in internal/genl; writing a
// pcap trace of everything flowing across a [DriverLink] lives in the
// sibling pcapdump package.
package wmediumd
