package rcon

import "errors"

// ErrAuth is returned by Dial and Open when the server rejects the supplied
// password (auth response with ID -1). The failure is terminal: the
// transport has already been closed and the session must be rebuilt with a
// different password.
var ErrAuth = errors.New("rcon: authentication rejected")

// ErrClosed is returned when a session is used after Close. This signals
// caller misuse rather than a runtime fault; nothing on the wire causes it.
var ErrClosed = errors.New("rcon: session closed")

// ProtocolError kinds.
const (
	KindTruncated = "truncated"
	KindMalformed = "malformed"
	KindEncoding  = "encoding"
)

// ProtocolError reports a packet that could not be decoded: the stream ended
// mid-packet, the size prefix is out of range, or the response body is not
// valid text. A ProtocolError outside the auth handshake does not invalidate
// the session.
type ProtocolError struct {
	err  error
	Kind string
	msg  string
}

func (e *ProtocolError) Error() string {
	s := "rcon: " + e.Kind + " packet"
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.err != nil {
		s += ": " + e.err.Error()
	}
	return s
}

func (e *ProtocolError) Unwrap() error {
	return e.err
}

// ConnectionError reports a transport failure: connection refused, reset, or
// an expired deadline. The caller may reconnect and re-authenticate.
type ConnectionError struct {
	Err     error
	Op      string
	Timeout bool
}

func (e *ConnectionError) Error() string {
	if e.Timeout {
		return "rcon: " + e.Op + " timed out: " + e.Err.Error()
	}
	return "rcon: " + e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a ConnectionError caused by an expired
// connect or read deadline.
func IsTimeout(err error) bool {
	var c *ConnectionError
	return errors.As(err, &c) && c.Timeout
}
