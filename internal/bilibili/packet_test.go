package bilibili

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacket_EncodeHeader(t *testing.T) {
	raw := Packet{Proto: ProtoHeartbeat, Op: OpHeartbeat, Sequence: 1, Body: []byte("[object Object]")}.Encode()

	require.Len(t, raw, 16+15)
	require.Equal(t, uint32(31), binary.BigEndian.Uint32(raw[0:4]))
	require.Equal(t, uint16(16), binary.BigEndian.Uint16(raw[4:6]))
	require.Equal(t, ProtoHeartbeat, binary.BigEndian.Uint16(raw[6:8]))
	require.Equal(t, OpHeartbeat, binary.BigEndian.Uint32(raw[8:12]))
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(raw[12:16]))
}

func TestReadPacket_Sequence(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Packet{Op: OpAuthReply, Body: []byte(`{"code":0}`)}.Encode())
	buf.Write(Packet{Op: OpMessage, Body: []byte(`{"cmd":"DANMU_MSG"}`)}.Encode())

	p1, err := ReadPacket(&buf)
	require.NoError(t, err)
	require.Equal(t, OpAuthReply, p1.Op)
	require.JSONEq(t, `{"code":0}`, string(p1.Body))

	p2, err := ReadPacket(&buf)
	require.NoError(t, err)
	require.Equal(t, OpMessage, p2.Op)

	_, err = ReadPacket(&buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadPacket_RejectsBadLength(t *testing.T) {
	raw := Packet{Op: OpMessage}.Encode()
	binary.BigEndian.PutUint32(raw[0:4], 4)

	_, err := ReadPacket(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrShortPacket)
}

func TestReadPacket_TruncatedBody(t *testing.T) {
	raw := Packet{Op: OpMessage, Body: []byte("abcdef")}.Encode()
	_, err := ReadPacket(bytes.NewReader(raw[:len(raw)-2]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestUnpack_Zlib(t *testing.T) {
	var inner bytes.Buffer
	inner.Write(Packet{Op: OpMessage, Body: []byte(`{"cmd":"A"}`)}.Encode())
	inner.Write(Packet{Op: OpMessage, Body: []byte(`{"cmd":"B"}`)}.Encode())

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(inner.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	packets, err := Unpack(Packet{Proto: ProtoZlib, Op: OpMessage, Body: compressed.Bytes()})
	require.NoError(t, err)
	require.Len(t, packets, 2)
	require.Equal(t, `{"cmd":"A"}`, string(packets[0].Body))
	require.Equal(t, `{"cmd":"B"}`, string(packets[1].Body))
}

func TestUnpack_PlainAndBrotli(t *testing.T) {
	plain := Packet{Proto: ProtoPlain, Op: OpMessage, Body: []byte("{}")}
	packets, err := Unpack(plain)
	require.NoError(t, err)
	require.Equal(t, []Packet{plain}, packets)

	_, err = Unpack(Packet{Proto: ProtoBrotli})
	require.ErrorIs(t, err, ErrUnsupportedBrotli)
}

func TestPopularity(t *testing.T) {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, 123456)

	v, ok := Popularity(Packet{Op: OpHeartbeatReply, Body: body})
	require.True(t, ok)
	require.Equal(t, uint32(123456), v)

	_, ok = Popularity(Packet{Op: OpMessage, Body: body})
	require.False(t, ok)
	_, ok = Popularity(Packet{Op: OpHeartbeatReply, Body: body[:2]})
	require.False(t, ok)
}
