package protocol

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPoll is how long Receive waits for a datagram before reporting NothingPending.
const DefaultPoll = 5 * time.Millisecond

var ErrSend = errors.New("send failed")

// ReadResult classifies one receive attempt.
type ReadResult uint8

const (
	NothingPending ReadResult = iota
	Malformed
	Received
)

func (r ReadResult) String() string {
	switch r {
	case Malformed:
		return "malformed"
	case Received:
		return "received"
	}
	return "nothing_pending"
}

type Packet struct {
	Msg  Message
	Addr net.Addr
}

// Conn sends and receives one Message per datagram. It is safe for one reader and any
// number of concurrent senders, as is the underlying PacketConn.
type Conn struct {
	pc   net.PacketConn
	buf  []byte
	poll time.Duration
	log  zerolog.Logger
}

func NewConn(pc net.PacketConn, poll time.Duration, log zerolog.Logger) *Conn {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Conn{
		pc:   pc,
		buf:  make([]byte, MaxDatagram),
		poll: poll,
		log:  log,
	}
}

// Receive waits at most the poll interval for a datagram. The only error it returns is
// net.ErrClosed once the socket is closed; everything else is classified and logged.
func (c *Conn) Receive() (Packet, ReadResult, error) {
	if err := c.pc.SetReadDeadline(time.Now().Add(c.poll)); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return Packet{}, NothingPending, err
		}
		c.log.Debug().Err(err).Msg("set read deadline")
	}

	n, addr, err := c.pc.ReadFrom(c.buf)
	if err != nil {
		var ne net.Error
		switch {
		case errors.As(err, &ne) && ne.Timeout():
		case errors.Is(err, net.ErrClosed):
			return Packet{}, NothingPending, err
		default:
			c.log.Debug().Err(err).Msg("read datagram")
		}
		return Packet{}, NothingPending, nil
	}

	msg, err := Decode(c.buf[:n])
	if err != nil {
		c.log.Warn().Err(err).Stringer("addr", addr).Int("size", n).Msg("dropping datagram")
		return Packet{Addr: addr}, Malformed, nil
	}
	return Packet{Msg: msg, Addr: addr}, Received, nil
}

// Send writes msg to addr once. Failures are logged and returned wrapped in ErrSend.
func (c *Conn) Send(msg Message, addr net.Addr) error {
	return c.SendRedundant(msg, addr, 1)
}

// SendRedundant writes n copies of msg to addr without waiting for any acknowledgement.
func (c *Conn) SendRedundant(msg Message, addr net.Addr, n int) error {
	b, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	var errs []error
	for i := 0; i < max(n, 1); i++ {
		if _, err := c.pc.WriteTo(b, addr); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := fmt.Errorf("%w: %s to %s: %w", ErrSend, msg.Kind(), addr, errors.Join(errs...))
		c.log.Warn().Err(err).Msg("send")
		return err
	}
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return c.pc.LocalAddr()
}

func (c *Conn) Close() error {
	return c.pc.Close()
}
