package rcon_test

import (
	"errors"
	"net"
	"testing"
	"time"

	"asamgr/rcon"
)

// serveAuth reads the client's auth request and accepts it, mirroring the
// request ID back like a real server.
func serveAuth(t *testing.T, c net.Conn) {
	t.Helper()
	var req rcon.Packet
	if _, err := req.ReadFrom(c); err != nil {
		t.Errorf("failed to read auth request: %s", err)
		return
	}
	resp := rcon.Packet{ID: req.ID, Type: rcon.PacketTypeAuthResponse}
	if _, err := resp.WriteTo(c); err != nil {
		t.Errorf("failed to send auth response: %s", err)
	}
}

// serveCommand reads one command/probe pair and replies with the provided
// bodies under the command's ID, then echoes the probe ID.
func serveCommand(t *testing.T, c net.Conn, bodies ...[]byte) {
	t.Helper()
	var cmd, probe rcon.Packet
	if _, err := cmd.ReadFrom(c); err != nil {
		t.Errorf("failed to read command packet: %s", err)
		return
	}
	if _, err := probe.ReadFrom(c); err != nil {
		t.Errorf("failed to read probe packet: %s", err)
		return
	}
	for _, b := range bodies {
		p := rcon.Packet{ID: cmd.ID, Type: rcon.PacketTypeResponseValue, Body: b}
		if _, err := p.WriteTo(c); err != nil {
			t.Errorf("failed to send response packet: %s", err)
			return
		}
	}
	end := rcon.Packet{ID: probe.ID, Type: rcon.PacketTypeResponseValue}
	if _, err := end.WriteTo(c); err != nil {
		t.Errorf("failed to send probe echo: %s", err)
	}
}

func TestSessionAuthSuccess(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go serveAuth(t, sc)

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %s", err)
	}
}

func TestSessionAuthLeadingEmptyResponse(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		var req rcon.Packet
		if _, err := req.ReadFrom(sc); err != nil {
			t.Errorf("failed to read auth request: %s", err)
			return
		}
		// Some server builds push an empty RESPONSE_VALUE before the real
		// auth response.
		empty := rcon.Packet{ID: req.ID, Type: rcon.PacketTypeResponseValue}
		empty.WriteTo(sc)
		resp := rcon.Packet{ID: req.ID, Type: rcon.PacketTypeAuthResponse}
		resp.WriteTo(sc)
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	s.Close()
}

func TestSessionAuthRejected(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		var req rcon.Packet
		if _, err := req.ReadFrom(sc); err != nil {
			t.Errorf("failed to read auth request: %s", err)
			return
		}
		resp := rcon.Packet{ID: -1, Type: rcon.PacketTypeAuthResponse}
		resp.WriteTo(sc)
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "wrong"})
	if !errors.Is(err, rcon.ErrAuth) {
		t.Fatalf("Open = (%v, %v), want ErrAuth", s, err)
	}
	if s != nil {
		t.Fatal("Open returned a session alongside an auth rejection")
	}
}

func TestSessionAuthTimeout(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		// Swallow the auth request and never answer.
		var req rcon.Packet
		req.ReadFrom(sc)
	}()

	_, err := rcon.Open(cc, rcon.Config{Password: "hunter22", Timeout: 50 * time.Millisecond})
	if errors.Is(err, rcon.ErrAuth) {
		t.Fatal("a stalled handshake must not report a rejected password")
	}
	if !rcon.IsTimeout(err) {
		t.Fatalf("Open = %v, want timeout ConnectionError", err)
	}
}

func TestSessionExecute(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		serveAuth(t, sc)
		serveCommand(t, sc, []byte("No Players Connected"))
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	defer s.Close()

	got, err := s.Execute("ListPlayers")
	if err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	if got != "No Players Connected" {
		t.Fatalf("Execute = %q, want %q", got, "No Players Connected")
	}
}

func TestSessionExecuteMultiPacket(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		serveAuth(t, sc)
		var cmd, probe rcon.Packet
		cmd.ReadFrom(sc)
		probe.ReadFrom(sc)
		first := rcon.Packet{ID: cmd.ID, Type: rcon.PacketTypeResponseValue, Body: []byte("Players: ")}
		first.WriteTo(sc)
		// A packet with an unrelated ID must not leak into the response.
		stray := rcon.Packet{ID: 9999, Type: rcon.PacketTypeResponseValue, Body: []byte("noise")}
		stray.WriteTo(sc)
		second := rcon.Packet{ID: cmd.ID, Type: rcon.PacketTypeResponseValue, Body: []byte("Alice, Bob")}
		second.WriteTo(sc)
		end := rcon.Packet{ID: probe.ID, Type: rcon.PacketTypeResponseValue}
		end.WriteTo(sc)
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	defer s.Close()

	got, err := s.Execute("ListPlayers")
	if err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	if got != "Players: Alice, Bob" {
		t.Fatalf("Execute = %q, want %q", got, "Players: Alice, Bob")
	}
}

func TestSessionExecuteEmptyResponse(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		serveAuth(t, sc)
		serveCommand(t, sc)
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	defer s.Close()

	got, err := s.Execute("SaveWorld")
	if err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	if got != "" {
		t.Fatalf("Execute = %q, want empty response", got)
	}
}

func TestSessionExecuteTimeoutDiscardsPartial(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		serveAuth(t, sc)
		var cmd, probe rcon.Packet
		cmd.ReadFrom(sc)
		probe.ReadFrom(sc)
		// One body packet, then silence: the probe echo never arrives.
		partial := rcon.Packet{ID: cmd.ID, Type: rcon.PacketTypeResponseValue, Body: []byte("Players: ")}
		partial.WriteTo(sc)
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	defer s.Close()

	got, err := s.Execute("ListPlayers")
	if !rcon.IsTimeout(err) {
		t.Fatalf("Execute = (%q, %v), want timeout ConnectionError", got, err)
	}
	if got != "" {
		t.Fatalf("Execute returned partial output %q alongside a timeout", got)
	}
}

func TestSessionExecuteBadEncoding(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go func() {
		serveAuth(t, sc)
		serveCommand(t, sc, []byte{0xff, 0xfe, 0xfd})
		// The session stays usable after an encoding failure.
		serveCommand(t, sc, []byte("ok"))
	}()

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	defer s.Close()

	_, err = s.Execute("GetChat")
	var pe *rcon.ProtocolError
	if !errors.As(err, &pe) || pe.Kind != rcon.KindEncoding {
		t.Fatalf("Execute = %v, want encoding ProtocolError", err)
	}

	got, err := s.Execute("GetChat")
	if err != nil || got != "ok" {
		t.Fatalf("Execute after encoding failure = (%q, %v), want (\"ok\", nil)", got, err)
	}
}

func TestSessionExecuteAfterClose(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go serveAuth(t, sc)

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %s", err)
	}

	if _, err := s.Execute("ListPlayers"); !errors.Is(err, rcon.ErrClosed) {
		t.Fatalf("Execute on closed session = %v, want ErrClosed", err)
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	cc, sc := net.Pipe()
	defer sc.Close()

	go serveAuth(t, sc)

	s, err := rcon.Open(cc, rcon.Config{Password: "hunter22"})
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close failed: %s", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %s", err)
	}
}
