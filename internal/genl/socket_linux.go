//go:build linux

package genl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// netlinkSocket is the production [Socket], a raw AF_NETLINK /
// NETLINK_GENERIC socket opened with golang.org/x/sys/unix. This is the
// real low-level package the reference corpus already depends on
// (doismellburning-samoyed's golang.org/x/sys), used here the way
// wmediumd.c uses libnl directly rather than through a higher-level
// generic-netlink client: there is no such fetchable client in the corpus
// to build on top of instead.
type netlinkSocket struct {
	fd int
}

var _ Socket = &netlinkSocket{}

// Dial opens a new AF_NETLINK/NETLINK_GENERIC socket and binds it to this
// process, returning a [Socket] ready for [NewConn].
func Dial() (Socket, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_GENERIC)
	if err != nil {
		return nil, fmt.Errorf("genl: socket: %w", err)
	}
	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("genl: bind: %w", err)
	}
	return &netlinkSocket{fd: fd}, nil
}

// Send implements [Socket].
func (s *netlinkSocket) Send(raw []byte) error {
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	if err := unix.Sendto(s.fd, raw, 0, sa); err != nil {
		return fmt.Errorf("genl: sendto: %w", err)
	}
	return nil
}

// recvBufferSize is generous enough for a TX_FRAME carrying a maximum-size
// 802.11 frame plus its rate schedule and cookie attributes.
const recvBufferSize = 1 << 16

// Recv implements [Socket].
func (s *netlinkSocket) Recv() ([]byte, error) {
	buf := make([]byte, recvBufferSize)
	n, _, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		return nil, fmt.Errorf("genl: recvfrom: %w", err)
	}
	return buf[:n], nil
}

// Close implements [Socket].
func (s *netlinkSocket) Close() error {
	return unix.Close(s.fd)
}
