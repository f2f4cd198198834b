package bilibili

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Danmaku packet operations.
const (
	OpHeartbeat      uint32 = 2
	OpHeartbeatReply uint32 = 3
	OpMessage        uint32 = 5
	OpAuth           uint32 = 7
	OpAuthReply      uint32 = 8
)

// Body encodings carried in the protover header field.
const (
	ProtoPlain     uint16 = 0
	ProtoHeartbeat uint16 = 1
	ProtoZlib      uint16 = 2
	ProtoBrotli    uint16 = 3
)

const (
	headerLen     = 16
	maxPacketSize = 1 << 22
)

var (
	ErrShortPacket       = errors.New("bilibili: short packet")
	ErrPacketTooLarge    = errors.New("bilibili: packet too large")
	ErrUnsupportedBrotli = errors.New("bilibili: brotli bodies are not supported")
)

// Packet is one danmaku protocol frame.
//
//	0       4     6        8    12   16
//	| len   | hdr | proto  | op | seq | body...
type Packet struct {
	Proto    uint16
	Op       uint32
	Sequence uint32
	Body     []byte
}

// Encode serialises p with a big-endian header.
func (p Packet) Encode() []byte {
	buf := make([]byte, headerLen+len(p.Body))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.BigEndian.PutUint16(buf[4:6], headerLen)
	binary.BigEndian.PutUint16(buf[6:8], p.Proto)
	binary.BigEndian.PutUint32(buf[8:12], p.Op)
	binary.BigEndian.PutUint32(buf[12:16], p.Sequence)
	copy(buf[headerLen:], p.Body)
	return buf
}

// ReadPacket reads exactly one frame from r.
func ReadPacket(r io.Reader) (Packet, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Packet{}, err
	}

	total := binary.BigEndian.Uint32(hdr[0:4])
	hlen := binary.BigEndian.Uint16(hdr[4:6])
	if total < uint32(hlen) || hlen < headerLen {
		return Packet{}, fmt.Errorf("%w: length %d header %d", ErrShortPacket, total, hlen)
	}
	if total > maxPacketSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, total)
	}

	// Skip any header extension beyond the 16 bytes we understand.
	if extra := int(hlen) - headerLen; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return Packet{}, err
		}
	}

	body := make([]byte, int(total)-int(hlen))
	if _, err := io.ReadFull(r, body); err != nil {
		return Packet{}, err
	}

	return Packet{
		Proto:    binary.BigEndian.Uint16(hdr[6:8]),
		Op:       binary.BigEndian.Uint32(hdr[8:12]),
		Sequence: binary.BigEndian.Uint32(hdr[12:16]),
		Body:     body,
	}, nil
}

// Unpack expands compressed frames into the plain frames they carry.
// Plain frames are returned as is.
func Unpack(p Packet) ([]Packet, error) {
	switch p.Proto {
	case ProtoZlib:
		zr, err := zlib.NewReader(bytes.NewReader(p.Body))
		if err != nil {
			return nil, fmt.Errorf("zlib body: %w", err)
		}
		defer zr.Close()
		raw, err := io.ReadAll(io.LimitReader(zr, maxPacketSize))
		if err != nil {
			return nil, fmt.Errorf("zlib body: %w", err)
		}
		return splitPackets(raw)
	case ProtoBrotli:
		return nil, ErrUnsupportedBrotli
	default:
		return []Packet{p}, nil
	}
}

func splitPackets(raw []byte) ([]Packet, error) {
	var out []Packet
	r := bytes.NewReader(raw)
	for r.Len() > 0 {
		p, err := ReadPacket(r)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Popularity decodes the body of an OpHeartbeatReply frame.
func Popularity(p Packet) (uint32, bool) {
	if p.Op != OpHeartbeatReply || len(p.Body) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(p.Body[:4]), true
}
