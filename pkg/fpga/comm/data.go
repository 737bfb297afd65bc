package comm

import (
	"fmt"
	"unsafe"
)

// Codec serializes values of T to and from little-endian bytes.
// Every codec has a fixed width: Decode only accepts exactly Size() bytes.
type Codec[T any] interface {
	// Size is the encoded width in bytes.
	Size() int
	// TypeName is used when reporting decode errors.
	TypeName() string
	// Encode returns the little-endian encoding of v.
	Encode(v T) []byte
	// Decode parses exactly Size() bytes.
	Decode(b []byte) (T, error)
}

// Scalar is the set of fixed-width integer types a scalar codec supports.
// The fixed-point types are defined over int8 and int32 and match as well.
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

// Predefined scalar codecs.
var (
	U8     Codec[uint8]  = ScalarOf[uint8]()
	U16    Codec[uint16] = ScalarOf[uint16]()
	U32    Codec[uint32] = ScalarOf[uint32]()
	U64    Codec[uint64] = ScalarOf[uint64]()
	I8     Codec[int8]   = ScalarOf[int8]()
	I16    Codec[int16]  = ScalarOf[int16]()
	I32    Codec[int32]  = ScalarOf[int32]()
	I64    Codec[int64]  = ScalarOf[int64]()
	Q1_7   Codec[I1F7]   = ScalarOf[I1F7]()
	Q16_16 Codec[I16F16] = ScalarOf[I16F16]()
)

type scalarCodec[T Scalar] struct {
	size int
	name string
}

// ScalarOf creates the codec of a fixed-width integer type.
func ScalarOf[T Scalar]() Codec[T] {
	var v T
	return scalarCodec[T]{size: int(unsafe.Sizeof(v)), name: fmt.Sprintf("%T", v)}
}

func (c scalarCodec[T]) Size() int        { return c.size }
func (c scalarCodec[T]) TypeName() string { return c.name }

func (c scalarCodec[T]) Encode(v T) []byte {
	b, u := make([]byte, c.size), uint64(v)
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	return b
}

func (c scalarCodec[T]) Decode(b []byte) (T, error) {
	if len(b) != c.size {
		return 0, &ByteCountMismatchError{Type: c.name, Expected: c.size, Got: len(b)}
	}
	var u uint64
	for i, v := range b {
		u |= uint64(v) << (8 * i)
	}
	return T(u), nil
}

type arrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

// ArrayOf creates the codec of a fixed-length array of elem.
// Elements are encoded in index order. Decode requires exactly
// elem.Size()*n bytes and reports mismatches against the whole array.
func ArrayOf[T any](elem Codec[T], n int) Codec[[]T] {
	return arrayCodec[T]{elem: elem, n: n}
}

func (c arrayCodec[T]) Size() int { return c.elem.Size() * c.n }

func (c arrayCodec[T]) TypeName() string {
	return fmt.Sprintf("[%d]%s", c.n, c.elem.TypeName())
}

func (c arrayCodec[T]) Encode(vals []T) []byte {
	b := make([]byte, 0, c.Size())
	for _, v := range vals {
		b = append(b, c.elem.Encode(v)...)
	}
	return b
}

func (c arrayCodec[T]) Decode(b []byte) ([]T, error) {
	if len(b) != c.Size() {
		return nil, &ByteCountMismatchError{Type: c.TypeName(), Expected: c.Size(), Got: len(b)}
	}
	vals, width := make([]T, c.n), c.elem.Size()
	for i := range vals {
		v, err := c.elem.Decode(b[i*width : (i+1)*width])
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
