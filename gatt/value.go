package gatt

import "github.com/jy1655/BzPeri/bzpath"

// Kind tags the variant held by a Value. gatt stays free of any D-Bus
// import — it never does I/O of its own — so it cannot use godbus's
// dbus.Variant directly. Value is the local tagged-union stand-in,
// marshalled to the wire type system by package dbusx at the D-Bus
// boundary.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindByte
	KindUint16
	KindUint32
	KindInt16
	KindInt32
	KindUint64
	KindInt64
	KindFloat64
	KindString
	KindObjectPath
	KindSignature
	KindBytes
	KindArray
	KindDict
	KindVariant
	KindTuple
)

// Value is a tagged union covering every shape the D-Bus surface this
// library exposes requires.
type Value struct {
	kind    Kind
	b       bool
	u8      byte
	u16     uint16
	u32     uint32
	i16     int16
	i32     int32
	u64     uint64
	i64     int64
	f64     float64
	str     string
	path    bzpath.ObjectPath
	bytes   []byte
	arr     []Value
	dict    map[string]Value
	variant *Value
	tuple   []Value
}

func (v Value) Kind() Kind { return v.kind }

func Invalid() Value                      { return Value{kind: KindInvalid} }
func Bool(b bool) Value                   { return Value{kind: KindBool, b: b} }
func Byte(b byte) Value                   { return Value{kind: KindByte, u8: b} }
func Uint16(u uint16) Value               { return Value{kind: KindUint16, u16: u} }
func Uint32(u uint32) Value               { return Value{kind: KindUint32, u32: u} }
func Int16(i int16) Value                 { return Value{kind: KindInt16, i16: i} }
func Int32(i int32) Value                 { return Value{kind: KindInt32, i32: i} }
func Uint64(u uint64) Value               { return Value{kind: KindUint64, u64: u} }
func Int64(i int64) Value                 { return Value{kind: KindInt64, i64: i} }
func Float64(f float64) Value             { return Value{kind: KindFloat64, f64: f} }
func String(s string) Value               { return Value{kind: KindString, str: s} }
func Signature(s string) Value            { return Value{kind: KindSignature, str: s} }
func ObjectPath(p bzpath.ObjectPath) Value { return Value{kind: KindObjectPath, path: p} }
func Bytes(b []byte) Value                { return Value{kind: KindBytes, bytes: append([]byte(nil), b...)} }
func Array(vs []Value) Value              { return Value{kind: KindArray, arr: vs} }
func Dict(m map[string]Value) Value       { return Value{kind: KindDict, dict: m} }
func Tuple(vs []Value) Value              { return Value{kind: KindTuple, tuple: vs} }

func Variant(v Value) Value {
	cp := v
	return Value{kind: KindVariant, variant: &cp}
}

func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsByte() (byte, bool)     { return v.u8, v.kind == KindByte }
func (v Value) AsUint16() (uint16, bool) { return v.u16, v.kind == KindUint16 }
func (v Value) AsUint32() (uint32, bool) { return v.u32, v.kind == KindUint32 }
func (v Value) AsInt16() (int16, bool)   { return v.i16, v.kind == KindInt16 }
func (v Value) AsInt32() (int32, bool)   { return v.i32, v.kind == KindInt32 }
func (v Value) AsUint64() (uint64, bool) { return v.u64, v.kind == KindUint64 }
func (v Value) AsInt64() (int64, bool)   { return v.i64, v.kind == KindInt64 }
func (v Value) AsFloat64() (float64, bool) { return v.f64, v.kind == KindFloat64 }
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString || v.kind == KindSignature
}
func (v Value) AsObjectPath() (bzpath.ObjectPath, bool) {
	return v.path, v.kind == KindObjectPath
}
func (v Value) AsBytes() ([]byte, bool) { return v.bytes, v.kind == KindBytes }
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) AsDict() (map[string]Value, bool) { return v.dict, v.kind == KindDict }
func (v Value) AsTuple() ([]Value, bool) { return v.tuple, v.kind == KindTuple }
func (v Value) AsVariant() (Value, bool) {
	if v.kind != KindVariant || v.variant == nil {
		return Value{}, false
	}
	return *v.variant, true
}

// Raw returns the Go-native value Value wraps, for callers (notably
// package dbusx) that need to hand it to reflection-driven marshalling
// code outside this package.
func (v Value) Raw() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindByte:
		return v.u8
	case KindUint16:
		return v.u16
	case KindUint32:
		return v.u32
	case KindInt16:
		return v.i16
	case KindInt32:
		return v.i32
	case KindUint64:
		return v.u64
	case KindInt64:
		return v.i64
	case KindFloat64:
		return v.f64
	case KindString, KindSignature:
		return v.str
	case KindObjectPath:
		return v.path
	case KindBytes:
		return v.bytes
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Raw()
		}
		return out
	case KindDict:
		out := make(map[string]interface{}, len(v.dict))
		for k, e := range v.dict {
			out[k] = e.Raw()
		}
		return out
	case KindTuple:
		out := make([]interface{}, len(v.tuple))
		for i, e := range v.tuple {
			out[i] = e.Raw()
		}
		return out
	case KindVariant:
		if v.variant == nil {
			return nil
		}
		return v.variant.Raw()
	default:
		return nil
	}
}
