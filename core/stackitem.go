package core

import (
	"encoding/hex"
	"math/big"
)

// Kind tags the runtime variant of a StackItem (§3 Data Model).
type Kind uint8

const (
	KindInteger Kind = iota
	KindBoolean
	KindBuffer
	KindArray
	KindStruct
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindBoolean:
		return "Boolean"
	case KindBuffer:
		return "Buffer"
	case KindArray:
		return "Array"
	case KindStruct:
		return "Struct"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// MaxSize bounds the magnitude an Integer may have and still be converted to
// a native int via ToInt64 (§4.1 "shifts use ... toNumber (fails if it
// exceeds ±MAX_SIZE)").
const MaxSize = 1<<31 - 1

// StackItem is the tagged union of runtime values the VM operates on (§3).
// Coercions are total for the declared source/target pairs and return a
// typed error (wrapping ErrInvalidType) otherwise.
type StackItem interface {
	Kind() Kind
	AsBigInteger() (*big.Int, error)
	AsBool() bool
	AsBuffer() ([]byte, error)
	AsArray() ([]StackItem, error)
	ToContractParameter() ContractParameter
}

// ItemsEqual implements the structural/reference equality rule of §3(ii):
// Integer/Boolean/Buffer compare by canonical byte encoding; Array/Struct/
// Object compare by reference identity.
func ItemsEqual(a, b StackItem) bool {
	if isScalar(a) && isScalar(b) {
		ab, err1 := a.AsBuffer()
		bb, err2 := b.AsBuffer()
		if err1 != nil || err2 != nil {
			return false
		}
		return string(normalizeBuffer(ab)) == string(normalizeBuffer(bb))
	}
	return a == b
}

func isScalar(i StackItem) bool {
	switch i.Kind() {
	case KindInteger, KindBoolean, KindBuffer:
		return true
	default:
		return false
	}
}

// normalizeBuffer strips trailing zero bytes that don't affect the encoded
// two's-complement value's sign, so Integer(0) (empty buffer) equals
// Buffer(0x00) and similar degenerate encodings compare equal.
func normalizeBuffer(b []byte) []byte {
	bi := decodeTwosComplement(b)
	return encodeTwosComplement(bi)
}

//----------------------------------------------------------------------
// Integer
//----------------------------------------------------------------------

type integerItem struct{ v *big.Int }

// NewInteger wraps an arbitrary-precision signed integer.
func NewInteger(v *big.Int) StackItem { return &integerItem{v: new(big.Int).Set(v)} }

// NewIntegerInt64 is a convenience constructor for small integers.
func NewIntegerInt64(v int64) StackItem { return &integerItem{v: big.NewInt(v)} }

func (i *integerItem) Kind() Kind                 { return KindInteger }
func (i *integerItem) AsBigInteger() (*big.Int, error) { return new(big.Int).Set(i.v), nil }
func (i *integerItem) AsBool() bool               { return i.v.Sign() != 0 }
func (i *integerItem) AsBuffer() ([]byte, error)  { return encodeTwosComplement(i.v), nil }
func (i *integerItem) AsArray() ([]StackItem, error) {
	return nil, wrapType("Integer", "Array")
}
func (i *integerItem) ToContractParameter() ContractParameter {
	return ContractParameter{Type: "Integer", Value: i.v.String()}
}

//----------------------------------------------------------------------
// Boolean
//----------------------------------------------------------------------

type booleanItem struct{ v bool }

// NewBoolean wraps a boolean.
func NewBoolean(v bool) StackItem { return &booleanItem{v: v} }

func (b *booleanItem) Kind() Kind { return KindBoolean }
func (b *booleanItem) AsBigInteger() (*big.Int, error) {
	if b.v {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}
func (b *booleanItem) AsBool() bool { return b.v }
func (b *booleanItem) AsBuffer() ([]byte, error) {
	if b.v {
		return []byte{0x01}, nil
	}
	return []byte{}, nil
}
func (b *booleanItem) AsArray() ([]StackItem, error) { return nil, wrapType("Boolean", "Array") }
func (b *booleanItem) ToContractParameter() ContractParameter {
	return ContractParameter{Type: "Boolean", Value: b.v}
}

//----------------------------------------------------------------------
// Buffer
//----------------------------------------------------------------------

type bufferItem struct{ v []byte }

// NewBuffer wraps a byte string.
func NewBuffer(v []byte) StackItem {
	cp := make([]byte, len(v))
	copy(cp, v)
	return &bufferItem{v: cp}
}

func (buf *bufferItem) Kind() Kind { return KindBuffer }
func (buf *bufferItem) AsBigInteger() (*big.Int, error) {
	return decodeTwosComplement(buf.v), nil
}
func (buf *bufferItem) AsBool() bool {
	for _, b := range buf.v {
		if b != 0 {
			return true
		}
	}
	return false
}
func (buf *bufferItem) AsBuffer() ([]byte, error) {
	cp := make([]byte, len(buf.v))
	copy(cp, buf.v)
	return cp, nil
}
func (buf *bufferItem) AsArray() ([]StackItem, error) { return nil, wrapType("Buffer", "Array") }
func (buf *bufferItem) ToContractParameter() ContractParameter {
	return ContractParameter{Type: "ByteArray", Value: hex.EncodeToString(buf.v)}
}

//----------------------------------------------------------------------
// Array / Struct — reference-semantics collections (§3, §4.1)
//----------------------------------------------------------------------

type arrayItem struct{ items []StackItem }

// NewArray wraps items as an Array (reference semantics).
func NewArray(items []StackItem) StackItem { return &arrayItem{items: items} }

// NewArrayOfSize allocates an Array of n Boolean(false) items, per §4.1's
// NEWARRAY n.
func NewArrayOfSize(n int) StackItem {
	items := make([]StackItem, n)
	for i := range items {
		items[i] = NewBoolean(false)
	}
	return &arrayItem{items: items}
}

func (a *arrayItem) Kind() Kind                    { return KindArray }
func (a *arrayItem) AsBigInteger() (*big.Int, error) { return nil, wrapType("Array", "Integer") }
func (a *arrayItem) AsBool() bool                  { return true }
func (a *arrayItem) AsBuffer() ([]byte, error)     { return nil, wrapType("Array", "Buffer") }
func (a *arrayItem) AsArray() ([]StackItem, error) { return a.items, nil }
func (a *arrayItem) ToContractParameter() ContractParameter {
	vals := make([]ContractParameter, len(a.items))
	for i, it := range a.items {
		vals[i] = it.ToContractParameter()
	}
	return ContractParameter{Type: "Array", Value: vals}
}

// Set replaces element i by reference (no cloning) — arrays alias (§8 inv. 5).
func (a *arrayItem) Set(i int, v StackItem) { a.items[i] = v }
func (a *arrayItem) Len() int               { return len(a.items) }

type structItem struct{ items []StackItem }

// NewStructItem wraps items as a Struct from the given elements.
func NewStructItem(items []StackItem) StackItem { return &structItem{items: items} }

// NewStructOfSize allocates a Struct of n Boolean(false) items, per §4.1's
// NEWSTRUCT n.
func NewStructOfSize(n int) StackItem {
	items := make([]StackItem, n)
	for i := range items {
		items[i] = NewBoolean(false)
	}
	return &structItem{items: items}
}

func (s *structItem) Kind() Kind                     { return KindStruct }
func (s *structItem) AsBigInteger() (*big.Int, error) { return nil, wrapType("Struct", "Integer") }
func (s *structItem) AsBool() bool                   { return true }
func (s *structItem) AsBuffer() ([]byte, error)      { return nil, wrapType("Struct", "Buffer") }
func (s *structItem) AsArray() ([]StackItem, error)  { return s.items, nil }
func (s *structItem) ToContractParameter() ContractParameter {
	vals := make([]ContractParameter, len(s.items))
	for i, it := range s.items {
		vals[i] = it.ToContractParameter()
	}
	return ContractParameter{Type: "Struct", Value: vals}
}
func (s *structItem) Set(i int, v StackItem) { s.items[i] = v }
func (s *structItem) Len() int               { return len(s.items) }

// CloneForAssign implements §4.1 SETITEM's clone-on-write rule: assigning a
// Struct into a collection slot deep-clones it (nested Structs are cloned
// recursively; nested Arrays keep their identity, since only Struct has
// copy-on-assign semantics — §8 invariants 4 and 5 both hold as a result).
func CloneForAssign(v StackItem) StackItem {
	s, ok := v.(*structItem)
	if !ok {
		return v
	}
	cloned := make([]StackItem, len(s.items))
	for i, it := range s.items {
		cloned[i] = CloneForAssign(it)
	}
	return &structItem{items: cloned}
}

//----------------------------------------------------------------------
// Object — opaque ledger-entity wrappers
//----------------------------------------------------------------------

// ObjectKind names the payload type carried by an objectItem.
type ObjectKind string

const (
	ObjBlock          ObjectKind = "Block"
	ObjHeader         ObjectKind = "Header"
	ObjTransaction    ObjectKind = "Transaction"
	ObjInput          ObjectKind = "Input"
	ObjOutput         ObjectKind = "Output"
	ObjAttribute      ObjectKind = "Attribute"
	ObjAccount        ObjectKind = "Account"
	ObjAsset          ObjectKind = "Asset"
	ObjContract       ObjectKind = "Contract"
	ObjValidator      ObjectKind = "Validator"
	ObjECPoint        ObjectKind = "ECPoint"
	ObjUInt160        ObjectKind = "UInt160"
	ObjUInt256        ObjectKind = "UInt256"
	ObjStorageContext ObjectKind = "StorageContext"
)

type objectItem struct {
	kind    ObjectKind
	payload interface{}
}

// NewObject wraps an opaque ledger-entity payload under the given kind tag.
func NewObject(kind ObjectKind, payload interface{}) StackItem {
	return &objectItem{kind: kind, payload: payload}
}

func (o *objectItem) Kind() Kind { return KindObject }

func (o *objectItem) AsBigInteger() (*big.Int, error) {
	return nil, wrapType(string(o.kind), "Integer")
}

func (o *objectItem) AsBool() bool { return true }

// AsBuffer is explicitly supported for UInt160/UInt256/ECPoint (§3), every
// other object kind fails coercion.
func (o *objectItem) AsBuffer() ([]byte, error) {
	switch o.kind {
	case ObjUInt160:
		return o.payload.(UInt160).Bytes(), nil
	case ObjUInt256:
		return o.payload.(UInt256).Bytes(), nil
	case ObjECPoint:
		return o.payload.(ECPoint).Bytes(), nil
	default:
		return nil, wrapType(string(o.kind), "Buffer")
	}
}

func (o *objectItem) AsArray() ([]StackItem, error) { return nil, wrapType(string(o.kind), "Array") }

func (o *objectItem) ToContractParameter() ContractParameter {
	switch o.kind {
	case ObjUInt160:
		return ContractParameter{Type: "Hash160", Value: o.payload.(UInt160).Hex()}
	case ObjUInt256:
		return ContractParameter{Type: "Hash256", Value: o.payload.(UInt256).Hex()}
	case ObjECPoint:
		return ContractParameter{Type: "PublicKey", Value: hex.EncodeToString(o.payload.(ECPoint).Bytes())}
	default:
		return ContractParameter{Type: "InteropInterface", Value: string(o.kind)}
	}
}

// ObjectPayload type-asserts and returns the wrapped payload of an Object
// item, failing if item is not an Object of the expected kind.
func ObjectPayload(item StackItem, kind ObjectKind) (interface{}, error) {
	o, ok := item.(*objectItem)
	if !ok || o.kind != kind {
		return nil, wrapType("StackItem", string(kind))
	}
	return o.payload, nil
}

//----------------------------------------------------------------------
// ContractParameter — serializable projection for notifications (§4.1)
//----------------------------------------------------------------------

// ContractParameter is the serializable tree a StackItem projects into when
// emitted as part of a Notification action.
type ContractParameter struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value,omitempty"`
}

//----------------------------------------------------------------------
// Two's-complement little-endian integer <-> buffer codec (§4.1)
//----------------------------------------------------------------------

// encodeTwosComplement serializes v as little-endian two's-complement, with
// the sign bit in the MSB of the last byte; zero encodes to an empty buffer.
func encodeTwosComplement(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{}
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	be := abs.Bytes() // big-endian magnitude, no leading zero
	// Reverse to little-endian.
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	if !neg {
		if len(le) > 0 && le[len(le)-1]&0x80 != 0 {
			le = append(le, 0x00) // pad so the sign bit reads positive
		}
		return le
	}
	// Two's complement negation over the little-endian magnitude.
	out := make([]byte, len(le))
	carry := 1
	for i := 0; i < len(le); i++ {
		b := int(^le[i]&0xff) + carry
		out[i] = byte(b & 0xff)
		carry = b >> 8
	}
	if out[len(out)-1]&0x80 == 0 {
		extra := byte(0xff)
		if carry > 0 {
			extra = byte(carry-1) | 0xff
		}
		out = append(out, extra)
	}
	return out
}

// decodeTwosComplement parses a little-endian two's-complement buffer; an
// empty buffer decodes to 0.
func decodeTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	neg := b[len(b)-1]&0x80 != 0
	if !neg {
		be := make([]byte, len(b))
		for i, v := range b {
			be[len(b)-1-i] = v
		}
		return new(big.Int).SetBytes(be)
	}
	// Negate: invert bits, add 1, interpret as magnitude, then negate sign.
	inv := make([]byte, len(b))
	carry := 1
	for i := 0; i < len(b); i++ {
		v := int(^b[i]&0xff) + carry
		inv[i] = byte(v & 0xff)
		carry = v >> 8
	}
	be := make([]byte, len(inv))
	for i, v := range inv {
		be[len(inv)-1-i] = v
	}
	mag := new(big.Int).SetBytes(be)
	return mag.Neg(mag)
}

func wrapType(from, to string) error {
	return &typeCoercionError{from: from, to: to}
}

type typeCoercionError struct{ from, to string }

func (e *typeCoercionError) Error() string {
	return "invalid type coercion: " + e.from + " -> " + e.to
}
func (e *typeCoercionError) Unwrap() error { return ErrInvalidType }

// ToInt64 converts an Integer-coercible item to a native int, failing if the
// magnitude exceeds ±MaxSize (§4.1 "toNumber").
func ToInt64(item StackItem) (int64, error) {
	bi, err := item.AsBigInteger()
	if err != nil {
		return 0, err
	}
	if !bi.IsInt64() || bi.Int64() > MaxSize || bi.Int64() < -MaxSize {
		return 0, wrapType("Integer", "int64 (exceeds MaxSize)")
	}
	return bi.Int64(), nil
}
