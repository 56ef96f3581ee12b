package protocol

import (
	"fmt"
	"math/big"
	"strings"
)

// ScalarType is one of the fixed scalar argument types a catalog may declare.
type ScalarType string

const (
	TypeInt    ScalarType = "int"
	TypeInt8   ScalarType = "int8_t"
	TypeInt16  ScalarType = "int16_t"
	TypeInt32  ScalarType = "int32_t"
	TypeInt64  ScalarType = "int64_t"
	TypeUint   ScalarType = "uint"
	TypeUint8  ScalarType = "uint8_t"
	TypeUint16 ScalarType = "uint16_t"
	TypeUint32 ScalarType = "uint32_t"
	TypeUint64 ScalarType = "uint64_t"
	TypeFloat  ScalarType = "float"
	TypeBool   ScalarType = "bool"
	TypeString ScalarType = "string"
)

const arraySuffix = "[]"

type scalarKind int

const (
	kindSigned scalarKind = iota
	kindUnsigned
	kindFloat
	kindBool
	kindString
)

type scalarInfo struct {
	kind     scalarKind
	min, max *big.Int
}

func intBounds(bits uint) (*big.Int, *big.Int) {
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	return new(big.Int).Neg(limit), new(big.Int).Sub(limit, big.NewInt(1))
}

func uintBounds(bits uint) (*big.Int, *big.Int) {
	limit := new(big.Int).Lsh(big.NewInt(1), bits)
	return big.NewInt(0), new(big.Int).Sub(limit, big.NewInt(1))
}

func signed(bits uint) scalarInfo {
	lo, hi := intBounds(bits)
	return scalarInfo{kind: kindSigned, min: lo, max: hi}
}

func unsigned(bits uint) scalarInfo {
	lo, hi := uintBounds(bits)
	return scalarInfo{kind: kindUnsigned, min: lo, max: hi}
}

// scalarOrder fixes the order in which types are reported to users.
var scalarOrder = []ScalarType{
	TypeInt, TypeInt8, TypeInt16, TypeInt32, TypeInt64,
	TypeUint, TypeUint8, TypeUint16, TypeUint32, TypeUint64,
	TypeFloat, TypeBool, TypeString,
}

var scalarTypes = map[ScalarType]scalarInfo{
	TypeInt:    signed(32),
	TypeInt8:   signed(8),
	TypeInt16:  signed(16),
	TypeInt32:  signed(32),
	TypeInt64:  signed(64),
	TypeUint:   unsigned(32),
	TypeUint8:  unsigned(8),
	TypeUint16: unsigned(16),
	TypeUint32: unsigned(32),
	TypeUint64: unsigned(64),
	TypeFloat:  {kind: kindFloat},
	TypeBool:   {kind: kindBool},
	TypeString: {kind: kindString},
}

// Valid reports whether t is a known scalar type.
func (t ScalarType) Valid() bool {
	_, ok := scalarTypes[t]
	return ok
}

// IsInteger reports whether t is one of the fixed-width integer types.
func (t ScalarType) IsInteger() bool {
	info, ok := scalarTypes[t]
	return ok && (info.kind == kindSigned || info.kind == kindUnsigned)
}

// ArgType is a declared argument type: a scalar, or an array of that scalar.
type ArgType struct {
	Scalar ScalarType
	Array  bool
}

// ParseArgType parses a declared type such as "uint16_t" or "int32_t[]".
func ParseArgType(s string) (ArgType, error) {
	t := ArgType{Scalar: ScalarType(s)}
	if strings.HasSuffix(s, arraySuffix) {
		t = ArgType{Scalar: ScalarType(strings.TrimSuffix(s, arraySuffix)), Array: true}
	}
	if !t.Scalar.Valid() {
		return ArgType{}, fmt.Errorf("unknown type %q, expected one of: %s", s, strings.Join(ValidTypes(), ", "))
	}
	return t, nil
}

func (t ArgType) String() string {
	if t.Array {
		return string(t.Scalar) + arraySuffix
	}
	return string(t.Scalar)
}

// Valid reports whether the scalar part of t is known.
func (t ArgType) Valid() bool { return t.Scalar.Valid() }

// ValidTypes returns every declarable type name, scalars first.
func ValidTypes() []string {
	out := make([]string, 0, 2*len(scalarOrder))
	for _, s := range scalarOrder {
		out = append(out, string(s))
	}
	for _, s := range scalarOrder {
		out = append(out, string(s)+arraySuffix)
	}
	return out
}
