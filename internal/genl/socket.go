package genl

import (
	"fmt"
	"sync/atomic"
)

// Socket is the minimal netlink transport [Conn] needs: send a fully framed
// message, and block for the next one. Production code gets a [Socket]
// from [Dial]; tests substitute [NewMockSocket] (see mock_socket.go).
type Socket interface {
	// Send transmits a fully framed netlink message.
	Send(raw []byte) error

	// Recv blocks until the next netlink message arrives.
	Recv() ([]byte, error)

	// Close releases the underlying file descriptor.
	Close() error
}

// Conn is a generic-netlink connection to one resolved family. It owns
// sequence-number generation and family resolution; wmediumd's driverlink.go
// builds HWSIM-specific requests/replies on top of it.
type Conn struct {
	sock     Socket
	familyID uint16
	seq      atomic.Uint32
}

// NewConn wraps sock as a [Conn] bound to the generic-netlink family
// identified by familyName, resolving it via CTRL_CMD_GETFAMILY.
func NewConn(sock Socket, familyName string) (*Conn, error) {
	c := &Conn{sock: sock}
	req := BuildGetFamilyRequest(c.nextSeq(), familyName)
	if err := sock.Send(req); err != nil {
		return nil, fmt.Errorf("genl: resolving family %q: %w", familyName, err)
	}
	reply, err := sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("genl: resolving family %q: %w", familyName, err)
	}
	id, err := ParseGetFamilyReply(reply)
	if err != nil {
		return nil, fmt.Errorf("genl: resolving family %q: %w", familyName, err)
	}
	c.familyID = id
	return c, nil
}

// FamilyID returns the resolved numeric family ID.
func (c *Conn) FamilyID() uint16 {
	return c.familyID
}

// nextSeq returns the next netlink sequence number.
func (c *Conn) nextSeq() uint32 {
	return c.seq.Add(1)
}

// Send marshals and sends msg to this connection's family.
func (c *Conn) Send(msg Message) error {
	raw := Marshal(c.familyID, c.nextSeq(), FlagRequest, msg)
	return c.sock.Send(raw)
}

// Recv blocks for the next message and decodes it as a generic-netlink
// message addressed to this connection's family.
func (c *Conn) Recv() (*Message, error) {
	raw, err := c.sock.Recv()
	if err != nil {
		return nil, err
	}
	return Unmarshal(raw)
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.sock.Close()
}
