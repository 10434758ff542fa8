package rcon

import (
	"encoding/binary"
	"io"
)

// RCON packet types. PacketTypeAuthResponse and PacketTypeExecCommand share
// the value 2; direction on the wire disambiguates them, not the field
// alone.
const (
	PacketTypeResponseValue = 0
	PacketTypeAuthResponse  = 2
	PacketTypeExecCommand   = 2
	PacketTypeAuth          = 3
)

// wrapperSize is the number of non-body bytes counted by the size prefix:
// four for the ID, four for the type, plus the two trailing null bytes. The
// size prefix itself is not included.
const wrapperSize = 10

// MaxPacketSize is the largest size prefix accepted for a single packet.
const MaxPacketSize = 4096

// Packet is one framed unit of the RCON wire protocol, either direction.
type Packet struct {
	Body []byte
	ID   int32
	Type int32
}

// MarshalBinary encodes the packet as
//
//	size(int32) id(int32) type(int32) body 0x00 0x00
//
// with every integer little-endian. The size field counts everything after
// itself.
func (p Packet) MarshalBinary() ([]byte, error) {
	size := int32(len(p.Body) + wrapperSize)
	if size > MaxPacketSize {
		return nil, &ProtocolError{Kind: KindMalformed, msg: "packet too large"}
	}
	b := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(b[0:4], uint32(size))
	binary.LittleEndian.PutUint32(b[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(b[8:12], uint32(p.Type))
	copy(b[12:], p.Body)
	// Trailing null terminators are already zero in the buffer.
	return b, nil
}

// WriteTo writes the binary representation of the packet to w.
func (p Packet) WriteTo(w io.Writer) (int64, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// ReadFrom decodes a single packet from r. A stream that ends mid-packet
// yields a ProtocolError of kind KindTruncated; a size prefix too small to
// hold the ID, type and terminators (or larger than MaxPacketSize) yields
// KindMalformed. Transport errors other than EOF, deadline expiry included,
// are returned unchanged.
func (p *Packet) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	head := make([]byte, 4)
	m, err := io.ReadFull(r, head)
	n += int64(m)
	if err != nil {
		return n, truncated(err)
	}

	size := int32(binary.LittleEndian.Uint32(head))
	if size < wrapperSize {
		return n, &ProtocolError{Kind: KindMalformed, msg: "size prefix too small"}
	}
	if size > MaxPacketSize {
		return n, &ProtocolError{Kind: KindMalformed, msg: "size prefix too large"}
	}

	payload := make([]byte, size)
	m, err = io.ReadFull(r, payload)
	n += int64(m)
	if err != nil {
		return n, truncated(err)
	}

	p.ID = int32(binary.LittleEndian.Uint32(payload[0:4]))
	p.Type = int32(binary.LittleEndian.Uint32(payload[4:8]))
	// Body length is derived, not read separately: everything between the
	// type field and the two terminators.
	p.Body = payload[8 : size-2]
	return n, nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &ProtocolError{Kind: KindTruncated, err: err}
	}
	return err
}
