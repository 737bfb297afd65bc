// Package comm implements the host side of the FPGA register protocol.
package comm

// The protocol is strictly half-duplex request/response over a byte stream
// (normally an RS-232 serial port). Every transaction is a single frame of
// 3 to 18 bytes:
//
//	[header][address or count (LE)][payload (writes only)]
//
// The header byte packs the transaction kind and a small size field:
//
//	write:            1LLLLLLL  L = payload length (<= 15)
//	contiguous read:  00NNNNNN  N = value size in bytes (<= 15)
//	FIFO read:        01IIIIII  I = stream id (6 bits)
//
// There is no correlation id and no readiness handshake. The device is
// given a fixed settle interval before a response is read back, so a new
// request must never be sent before the previous response is consumed.
//
// Producer: FPGA accelerator
// Consumer: host driver (this package)
