package rcon

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PurpleSec/logx"
)

// DefaultTimeout bounds the TCP connect and each packet read when
// Config.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// authGrace is how many stray packets the handshake will discard while
// waiting for the auth response. Some server builds push one empty
// SERVERDATA_RESPONSE_VALUE ahead of it; anything past a couple is a broken
// peer.
const authGrace = 4

// Config carries the connection parameters for a Session.
type Config struct {
	// Log, when set, receives a debug record for every packet sent and
	// received. Outbound auth packets are scrubbed so the password never
	// reaches the log.
	Log logx.Log

	Host     string
	Password string

	// Timeout applies to the TCP connect and to every packet read. Zero
	// means DefaultTimeout.
	Timeout time.Duration

	Port int
}

// Session is one authenticated RCON connection. It serializes its calls
// internally; the protocol variant gives no ordering guarantee for
// interleaved requests, so only one command is ever in flight. Independent
// sessions share nothing and may be used concurrently with each other.
type Session struct {
	conn    net.Conn
	log     logx.Log
	timeout time.Duration
	mu      sync.Mutex
	seq     int32
	closed  bool
}

// Dial opens a TCP connection to cfg.Host:cfg.Port and authenticates with
// cfg.Password. A rejected password yields ErrAuth; transport and handshake
// failures yield a *ConnectionError. On any error the connection is closed
// before returning.
func Dial(cfg Config) (*Session, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, &ConnectionError{Op: "connect " + addr, Timeout: isTimeout(err), Err: err}
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return Open(conn, cfg)
}

// Open authenticates over a caller-supplied transport, which makes the
// handshake testable against anything that satisfies net.Conn. The session
// takes ownership of conn and closes it on handshake failure or Close.
func Open(conn net.Conn, cfg Config) (*Session, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	s := &Session{conn: conn, timeout: timeout, log: cfg.Log}
	if err := s.auth(cfg.Password); err != nil {
		conn.Close()
		s.closed = true
		return nil, err
	}
	return s, nil
}

func (s *Session) auth(password string) error {
	id := s.nextID()
	err := s.send(Packet{ID: id, Type: PacketTypeAuth, Body: []byte(password)})
	if err != nil {
		return &ConnectionError{Op: "auth", Timeout: isTimeout(err), Err: err}
	}
	for i := 0; i < authGrace; i++ {
		p, err := s.recv()
		if err != nil {
			// Anything broken mid-handshake, malformed packets included,
			// counts as a connection failure the caller may retry. Only an
			// explicit ID of -1 is a rejected password.
			return &ConnectionError{Op: "auth", Timeout: isTimeout(err), Err: err}
		}
		if p.Type != PacketTypeAuthResponse {
			continue
		}
		if p.ID == -1 {
			return ErrAuth
		}
		if p.ID != id {
			return &ConnectionError{Op: "auth", Err: fmt.Errorf("unexpected response id %d", p.ID)}
		}
		return nil
	}
	return &ConnectionError{Op: "auth", Err: errors.New("no auth response received")}
}

// Execute sends command and returns the server's complete response text.
//
// Responses longer than one packet arrive split with no continuation flag,
// so Execute always sends an empty probe command right behind the real one
// and accumulates bodies carrying the command's ID until the probe's ID
// echoes back. A probe echo with nothing accumulated is an empty response,
// not an error.
//
// A read deadline expiring mid-response fails the whole call with a timeout
// *ConnectionError; accumulated partial output is discarded rather than
// returned truncated. A response that is not valid UTF-8 fails with a
// *ProtocolError of kind KindEncoding but leaves the session usable.
func (s *Session) Execute(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	cmdID := s.nextID()
	if err := s.send(Packet{ID: cmdID, Type: PacketTypeExecCommand, Body: []byte(command)}); err != nil {
		return "", sendErr(err)
	}
	probeID := s.nextID()
	if err := s.send(Packet{ID: probeID, Type: PacketTypeExecCommand}); err != nil {
		return "", sendErr(err)
	}

	var body []byte
	for {
		p, err := s.recv()
		if err != nil {
			var pe *ProtocolError
			if errors.As(err, &pe) {
				return "", pe
			}
			return "", &ConnectionError{Op: "execute", Timeout: isTimeout(err), Err: err}
		}
		switch p.ID {
		case probeID:
			if !utf8.Valid(body) {
				return "", &ProtocolError{Kind: KindEncoding, msg: "response is not valid UTF-8"}
			}
			return string(body), nil
		case cmdID:
			body = append(body, p.Body...)
		default:
			// Stray ID, not ours. -1 means nothing outside the handshake.
		}
	}
}

// Close releases the transport. Closing an already closed session is a
// no-op. Execute calls made afterwards fail with ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// nextID hands out correlation IDs starting at 1, skipping zero and
// negatives on wraparound so -1 stays reserved for the server's rejection
// sentinel.
func (s *Session) nextID() int32 {
	s.seq++
	if s.seq <= 0 {
		s.seq = 1
	}
	return s.seq
}

func (s *Session) send(p Packet) error {
	b, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	s.logPacket("send", p)
	_, err = s.conn.Write(b)
	return err
}

func (s *Session) recv() (Packet, error) {
	s.conn.SetReadDeadline(time.Now().Add(s.timeout))
	defer s.conn.SetReadDeadline(time.Time{})
	var p Packet
	if _, err := p.ReadFrom(s.conn); err != nil {
		return Packet{}, err
	}
	s.logPacket("recv", p)
	return p, nil
}

func (s *Session) logPacket(dir string, p Packet) {
	if s.log == nil {
		return
	}
	body := p.Body
	if dir == "send" && p.Type == PacketTypeAuth {
		body = []byte("*****")
	}
	s.log.Debug("Packet %s: id=%d type=%d body=%q.", dir, p.ID, p.Type, body)
}

func sendErr(err error) error {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe
	}
	return &ConnectionError{Op: "execute", Timeout: isTimeout(err), Err: err}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
