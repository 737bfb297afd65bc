package comm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBytes(t *testing.T, p *Packet, err error) []byte {
	require.NoError(t, err)
	b, err := p.Bytes()
	require.NoError(t, err)
	return b
}

func TestPacket(t *testing.T) {
	testCases := []struct {
		name   string
		packet func() (*Packet, error)
		expect []byte
	}{
		{"read u16 at 64", func() (*Packet, error) { return ContiguousReadFor(U16, 64) }, []byte{0x02, 0x40, 0x00}},
		{"read u8 status", func() (*Packet, error) { return ContiguousReadFor(U8, StatusRegAddress) }, []byte{0x01, 0x81, 0x00}},
		{"read 15 bytes", func() (*Packet, error) { return NewContiguousRead(15, 0x1234) }, []byte{0x0f, 0x34, 0x12}},
		{"write start", func() (*Packet, error) { return NewContiguousWrite([]byte{0x80}, 128) }, []byte{0x81, 0x80, 0x00, 0x80}},
		{"write empty", func() (*Packet, error) { return NewContiguousWrite(nil, 0xff00) }, []byte{0x80, 0x00, 0xff}},
		{"write 15 bytes", func() (*Packet, error) {
			return NewContiguousWrite([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, 1)
		}, []byte{0x8f, 0x01, 0x00, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}},
		{"fifo 128 from 0", func() (*Packet, error) { return NewFIFORead(128, 0) }, []byte{0x40, 0x80, 0x00}},
		{"fifo depth from 3", func() (*Packet, error) { return NewFIFORead(FIFODepth, 3) }, []byte{0x43, 0x00, 0x10}},
		{"fifo id masked", func() (*Packet, error) { return NewFIFORead(1, 0xc1) }, []byte{0x41, 0x01, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.packet()
			b := mustBytes(t, p, err)
			require.Equal(t, tc.expect, b)
			require.LessOrEqual(t, len(b), MaxPacketSize)
			var buf bytes.Buffer
			n, err := p.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, int64(len(tc.expect)), n)
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
}

func TestContiguousReadFrames(t *testing.T) {
	for size := 0; size <= MaxPayloadSize; size++ {
		for _, addr := range []uint16{0, 1, 0x80, 0x1ff, 0xffff} {
			p, err := NewContiguousRead(size, addr)
			b := mustBytes(t, p, err)
			require.Equal(t, []byte{byte(size), byte(addr), byte(addr >> 8)}, b)
			require.Zero(t, b[0]&0xc0)
		}
	}
	p, err := ContiguousReadFor(ArrayOf(Q1_7, 3), 0)
	b := mustBytes(t, p, err)
	require.Equal(t, []byte{0x03, 0, 0}, b)
}

func TestContiguousWriteFrames(t *testing.T) {
	for size := 0; size <= MaxPayloadSize; size++ {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(0xa0 + i)
		}
		addr := uint16(size * 257)
		p, err := NewContiguousWrite(payload, addr)
		b := mustBytes(t, p, err)
		expect := append([]byte{byte(size) | 0x80, byte(addr), byte(addr >> 8)}, payload...)
		require.Equal(t, expect, b)
	}
}

func TestContiguousWriteCopiesPayload(t *testing.T) {
	payload := []byte{1, 2}
	p, err := NewContiguousWrite(payload, 0)
	require.NoError(t, err)
	payload[0] = 9
	b, err := p.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0x82, 0, 0, 1, 2}, b)
}

func TestFIFOReadFrames(t *testing.T) {
	for _, count := range []int{0, 1, 2, 255, 256, 1000, FIFODepth} {
		for id := 0; id < 256; id++ {
			p, err := NewFIFORead(count, uint8(id))
			b := mustBytes(t, p, err)
			require.Equal(t, []byte{byte(id)&0x3f | 0x40, byte(count), byte(count >> 8)}, b)
		}
	}
}

func TestPacketLimits(t *testing.T) {
	var tooLarge *PayloadTooLargeError
	_, err := NewContiguousRead(MaxPayloadSize+1, 0)
	require.ErrorAs(t, err, &tooLarge)
	require.Equal(t, PayloadTooLargeError{Max: 15, Got: 16}, *tooLarge)

	_, err = ContiguousReadFor(ArrayOf(U64, 2), 0)
	require.ErrorAs(t, err, &tooLarge)
	require.Equal(t, 16, tooLarge.Got)

	p, err := NewContiguousWrite(make([]byte, 16), 0)
	require.Nil(t, p)
	require.ErrorAs(t, err, &tooLarge)

	var depth *FIFODepthExceededError
	p, err = NewFIFORead(FIFODepth+1, 0)
	require.Nil(t, p)
	require.ErrorAs(t, err, &depth)
	require.Equal(t, FIFODepthExceededError{Depth: 4096, Got: 4097}, *depth)
}

func TestMalformedPacket(t *testing.T) {
	var malformed *MalformedPacketError
	_, err := (&Packet{}).Bytes()
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, ReadPacket, malformed.Kind)
	require.Contains(t, err.Error(), "read packet")
}
