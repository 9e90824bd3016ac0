package core

import (
	"math/big"
	"testing"
)

func TestTwosComplementRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, 1 << 20, -(1 << 20)}
	for _, c := range cases {
		v := big.NewInt(c)
		buf := encodeTwosComplement(v)
		got := decodeTwosComplement(buf)
		if got.Cmp(v) != 0 {
			t.Fatalf("round trip %d: got %s", c, got.String())
		}
	}
}

func TestIntegerBufferCoercion(t *testing.T) {
	item := NewIntegerInt64(42)
	buf, err := item.AsBuffer()
	if err != nil {
		t.Fatalf("AsBuffer: %v", err)
	}
	back := decodeTwosComplement(buf)
	if back.Int64() != 42 {
		t.Fatalf("expected 42, got %s", back.String())
	}
}

func TestItemsEqualScalarByValue(t *testing.T) {
	a := NewIntegerInt64(5)
	b := NewIntegerInt64(5)
	if !ItemsEqual(a, b) {
		t.Fatalf("expected equal integers to compare equal")
	}
	c := NewIntegerInt64(6)
	if ItemsEqual(a, c) {
		t.Fatalf("expected unequal integers to compare unequal")
	}
}

func TestItemsEqualArrayByReference(t *testing.T) {
	a := NewArray([]StackItem{NewIntegerInt64(1)})
	b := NewArray([]StackItem{NewIntegerInt64(1)})
	if ItemsEqual(a, b) {
		t.Fatalf("expected distinct arrays with equal contents to compare unequal")
	}
	if !ItemsEqual(a, a) {
		t.Fatalf("expected an array to equal itself")
	}
}

func TestStructCloneForAssignDeepCopiesNestedStructs(t *testing.T) {
	inner := NewStructItem([]StackItem{NewIntegerInt64(1)})
	outer := NewStructItem([]StackItem{inner})

	cloned := CloneForAssign(outer)
	clonedStruct, ok := cloned.(*structItem)
	if !ok {
		t.Fatalf("expected CloneForAssign to preserve Struct kind")
	}
	if clonedStruct == outer {
		t.Fatalf("expected a distinct struct identity after clone")
	}
	if clonedStruct.items[0] == inner {
		t.Fatalf("expected nested struct to be deep-cloned, not aliased")
	}
}

func TestStructCloneForAssignPreservesNestedArrayIdentity(t *testing.T) {
	arr := NewArray([]StackItem{NewIntegerInt64(1)})
	outer := NewStructItem([]StackItem{arr})

	cloned := CloneForAssign(outer).(*structItem)
	if cloned.items[0] != arr {
		t.Fatalf("expected nested array identity to be preserved across clone")
	}
}

func TestArrayAliasesOnAssign(t *testing.T) {
	arr := NewArray([]StackItem{NewIntegerInt64(1)})
	if CloneForAssign(arr) != arr {
		t.Fatalf("expected Array to alias rather than clone on assignment")
	}
}
