package sh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

// RegisterType reads and writes registers as a value type.
type RegisterType struct {
	Size  int
	Read  func(s *comm.Session, address uint16) (string, error)
	Write func(s *comm.Session, address uint16, args []string) error
}

var registerTypes = map[string]RegisterType{
	"u8":     intType(comm.U8, false),
	"u16":    intType(comm.U16, false),
	"u32":    intType(comm.U32, false),
	"u64":    intType(comm.U64, false),
	"i8":     intType(comm.I8, true),
	"i16":    intType(comm.I16, true),
	"i32":    intType(comm.I32, true),
	"i64":    intType(comm.I64, true),
	"q1.7":   fixedType(comm.Q1_7, comm.I1F7FromFloat, comm.I1F7.Float),
	"q16.16": fixedType(comm.Q16_16, comm.I16F16FromFloat, comm.I16F16.Float),
}

// TypeNames lists the supported register type names.
func TypeNames() []string {
	names := make([]string, 0, len(registerTypes))
	for name := range registerTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupType finds a register type by name. An optional "[N]" suffix
// selects an array of N elements, e.g. "q1.7[3]".
func LookupType(name string) (RegisterType, error) {
	elemName, n := name, 1
	if i := strings.IndexByte(name, '['); i > 0 && strings.HasSuffix(name, "]") {
		count, err := strconv.Atoi(name[i+1 : len(name)-1])
		if err != nil || count <= 0 {
			return RegisterType{}, fmt.Errorf("invalid array length in %q", name)
		}
		elemName, n = name[:i], count
	}
	elem, ok := registerTypes[elemName]
	if !ok {
		return RegisterType{}, fmt.Errorf("unknown type %q, expect one of %s", elemName, strings.Join(TypeNames(), ", "))
	}
	if n == 1 {
		return elem, nil
	}
	return arrayType(elem, n), nil
}

func intType[T comm.Scalar](c comm.Codec[T], signed bool) RegisterType {
	size := c.Size()
	return RegisterType{
		Size: size,
		Read: func(s *comm.Session, address uint16) (string, error) {
			v, err := comm.Read(s, c, address)
			if err != nil {
				return "", err
			}
			if signed {
				return strconv.FormatInt(int64(v), 10), nil
			}
			return strconv.FormatUint(uint64(v), 10), nil
		},
		Write: func(s *comm.Session, address uint16, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expect 1 value, got %d", len(args))
			}
			var v T
			if signed {
				n, err := strconv.ParseInt(args[0], 0, size*8)
				if err != nil {
					return err
				}
				v = T(n)
			} else {
				n, err := strconv.ParseUint(args[0], 0, size*8)
				if err != nil {
					return err
				}
				v = T(n)
			}
			return comm.Write(s, c, v, address)
		},
	}
}

func fixedType[T comm.Scalar](c comm.Codec[T], fromFloat func(float64) T, toFloat func(T) float64) RegisterType {
	return RegisterType{
		Size: c.Size(),
		Read: func(s *comm.Session, address uint16) (string, error) {
			v, err := comm.Read(s, c, address)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(toFloat(v), 'g', -1, 64), nil
		},
		Write: func(s *comm.Session, address uint16, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expect 1 value, got %d", len(args))
			}
			f, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
			return comm.Write(s, c, fromFloat(f), address)
		},
	}
}

// arrayType reads and writes n consecutive elements. Each element is
// transferred in its own transaction so arrays wider than a payload work.
func arrayType(elem RegisterType, n int) RegisterType {
	return RegisterType{
		Size: elem.Size * n,
		Read: func(s *comm.Session, address uint16) (string, error) {
			vals := make([]string, n)
			for i := range vals {
				v, err := elem.Read(s, address+uint16(i*elem.Size))
				if err != nil {
					return "", err
				}
				vals[i] = v
			}
			return "[" + strings.Join(vals, " ") + "]", nil
		},
		Write: func(s *comm.Session, address uint16, args []string) error {
			if len(args) != n {
				return fmt.Errorf("expect %d values, got %d", n, len(args))
			}
			for i, arg := range args {
				if err := elem.Write(s, address+uint16(i*elem.Size), []string{arg}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
