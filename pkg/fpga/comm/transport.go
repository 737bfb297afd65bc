package comm

import "io"

// Transport is the duplex byte stream to the device.
//
// Read is a best-effort read: it returns whatever is available up to
// len(p). An implementation must report an expired read timeout as an
// error rather than returning 0, nil.
type Transport interface {
	io.ReadWriter
	// ClearBuffers discards bytes buffered in both directions.
	ClearBuffers() error
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}
