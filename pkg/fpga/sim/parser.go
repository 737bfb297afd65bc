package sim

import (
	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

// Parser parses request frames byte by byte on the device side.
type Parser struct {
	state   parseState
	header  byte
	word    uint16
	payload []byte
}

type parseState int

const (
	stateHeader  parseState = iota // waiting for header byte
	stateWordLo                    // waiting for address/count low byte
	stateWordHi                    // waiting for address/count high byte
	statePayload                   // waiting for write payload
)

const (
	headerWrite byte = 0x80
	headerFIFO  byte = 0x40
	sizeMask    byte = 0x3f
	lengthMask  byte = 0x7f
)

// Receiving indicates a frame is partially received.
func (p *Parser) Receiving() bool {
	return p.state != stateHeader
}

// Reset drops any partially received frame.
func (p *Parser) Reset() {
	p.state, p.header, p.word, p.payload = stateHeader, 0, 0, nil
}

// Parse consumes one byte and returns the transaction once a frame completes.
func (p *Parser) Parse(b byte) comm.Transaction {
	switch p.state {
	case stateHeader:
		p.header, p.state = b, stateWordLo
	case stateWordLo:
		p.word, p.state = uint16(b), stateWordHi
	case stateWordHi:
		p.word |= uint16(b) << 8
		if p.header&headerWrite == 0 {
			return p.complete()
		}
		if n := p.header & lengthMask; n > 0 {
			p.payload, p.state = make([]byte, 0, n), statePayload
			return nil
		}
		return p.complete()
	case statePayload:
		p.payload = append(p.payload, b)
		if len(p.payload) >= int(p.header&lengthMask) {
			return p.complete()
		}
	}
	return nil
}

func (p *Parser) complete() (tx comm.Transaction) {
	switch {
	case p.header&headerWrite != 0:
		tx = comm.ContiguousWrite{Payload: p.payload, Address: p.word}
	case p.header&headerFIFO != 0:
		tx = comm.FIFORead{NumBytes: p.word, ID: p.header & sizeMask}
	default:
		tx = comm.ContiguousRead{NumBytes: p.header & sizeMask, Address: p.word}
	}
	p.Reset()
	return tx
}
