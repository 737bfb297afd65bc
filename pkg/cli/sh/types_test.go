package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
	"github.com/robotalks/hostcomm/pkg/fpga/sim"
)

func newSession() (*comm.Session, *sim.Device) {
	d := sim.NewDevice()
	s := comm.NewSession(d)
	s.Settle = 0
	return s, d
}

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		str     string
		address uint16
		valid   bool
	}{
		{"0", 0, true},
		{"129", 129, true},
		{"0x80", 0x80, true},
		{"0xffff", 0xffff, true},
		{"65536", 0, false},
		{"-1", 0, false},
		{"status", 0, false},
	}
	for _, tc := range testCases {
		address, err := ParseAddress(tc.str)
		if tc.valid {
			require.NoError(t, err, tc.str)
			require.Equal(t, tc.address, address)
		} else {
			require.Error(t, err, tc.str)
		}
	}
}

func TestLookupType(t *testing.T) {
	require.Equal(t, []string{"i16", "i32", "i64", "i8", "q1.7", "q16.16", "u16", "u32", "u64", "u8"}, TypeNames())
	for name, size := range map[string]int{"u8": 1, "i16": 2, "q16.16": 4, "u64": 8, "q1.7[3]": 3, "u32[10]": 40} {
		rt, err := LookupType(name)
		require.NoError(t, err, name)
		require.Equal(t, size, rt.Size, name)
	}
	for _, name := range []string{"f32", "u8[0]", "u8[x]", "[3]", "q1.7[-1]"} {
		_, err := LookupType(name)
		require.Error(t, err, name)
	}
}

func TestRegisterTypes(t *testing.T) {
	testCases := []struct {
		typeName string
		args     []string
		regs     []byte
		value    string
	}{
		{"u8", []string{"0x80"}, []byte{0x80}, "128"},
		{"u16", []string{"4660"}, []byte{0x34, 0x12}, "4660"},
		{"i16", []string{"-2"}, []byte{0xfe, 0xff}, "-2"},
		{"i64", []string{"-1"}, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, "-1"},
		{"q1.7", []string{"-0.5"}, []byte{0xc0}, "-0.5"},
		{"q16.16", []string{"1.5"}, []byte{0x00, 0x80, 0x01, 0x00}, "1.5"},
		{"q1.7[3]", []string{"0.5", "-1", "0"}, []byte{0x40, 0x80, 0x00}, "[0.5 -1 0]"},
		{"u32[2]", []string{"1", "2"}, []byte{1, 0, 0, 0, 2, 0, 0, 0}, "[1 2]"},
	}
	for _, tc := range testCases {
		t.Run(tc.typeName, func(t *testing.T) {
			s, d := newSession()
			rt, err := LookupType(tc.typeName)
			require.NoError(t, err)
			require.NoError(t, rt.Write(s, 16, tc.args))
			for i, b := range tc.regs {
				require.Equal(t, b, d.Register(16+uint16(i)), "register %d", 16+i)
			}
			v, err := rt.Read(s, 16)
			require.NoError(t, err)
			require.Equal(t, tc.value, v)
		})
	}
}

func TestRegisterTypeErrors(t *testing.T) {
	s, _ := newSession()
	u8, err := LookupType("u8")
	require.NoError(t, err)
	require.Error(t, u8.Write(s, 0, []string{"256"}))
	require.Error(t, u8.Write(s, 0, []string{"1", "2"}))
	require.Error(t, u8.Write(s, 0, nil))

	arr, err := LookupType("i8[2]")
	require.NoError(t, err)
	require.Error(t, arr.Write(s, 0, []string{"1"}))
	require.Error(t, arr.Write(s, 0, []string{"1", "x"}))

	q, err := LookupType("q1.7")
	require.NoError(t, err)
	require.Error(t, q.Write(s, 0, []string{"half"}))
}
