package datagram

import (
	"fmt"
	"net"
)

// Sender emits trace datagrams the way instrumented probes do: one message
// per packet, no framing.
type Sender struct {
	conn net.Conn
}

// Dial opens a UDP socket towards addr.
func Dial(addr string) (*Sender, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Sender{conn: conn}, nil
}

// Send emits one log line.
func (s *Sender) Send(line string) error {
	return s.SendRaw([]byte(line))
}

// Clear emits the control token that resets the remote log.
func (s *Sender) Clear() error {
	return s.SendRaw([]byte(ClearToken))
}

// SendRaw emits an arbitrary payload as a single datagram.
func (s *Sender) SendRaw(payload []byte) error {
	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send datagram: %w", err)
	}
	return nil
}

// Close releases the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
