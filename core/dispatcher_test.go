package core

import (
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func newTestContext() *ExecutionContext {
	ctx := newRootContext(NewInMemoryBlockchain(), testInit(), nil, false, UInt160{}, NewGasMeter(NewFixed8(1000)))
	return ctx
}

func mustInt(t *testing.T, item StackItem) int64 {
	t.Helper()
	v, err := item.AsBigInteger()
	if err != nil {
		t.Fatalf("AsBigInteger: %v", err)
	}
	return v.Int64()
}

func TestStepStackShuffling(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewIntegerInt64(1))
	ctx.stack.Push(NewIntegerInt64(2))
	ctx.stack.Push(NewIntegerInt64(3))

	if err := ctx.step(OpSwap); err != nil {
		t.Fatalf("SWAP: %v", err)
	}
	top, _ := ctx.stack.Peek(0)
	if mustInt(t, top) != 2 {
		t.Fatalf("expected 2 on top after SWAP, got %d", mustInt(t, top))
	}

	if err := ctx.step(OpDup); err != nil {
		t.Fatalf("DUP: %v", err)
	}
	if ctx.stack.Len() != 4 {
		t.Fatalf("expected 4 items after DUP, got %d", ctx.stack.Len())
	}

	if err := ctx.step(OpDrop); err != nil {
		t.Fatalf("DROP: %v", err)
	}
	if err := ctx.step(OpOver); err != nil {
		t.Fatalf("OVER: %v", err)
	}
	top, _ = ctx.stack.Peek(0)
	if mustInt(t, top) != 3 {
		t.Fatalf("expected OVER to copy the second item (3), got %d", mustInt(t, top))
	}
}

func TestStepRotAndTuck(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewIntegerInt64(1))
	ctx.stack.Push(NewIntegerInt64(2))
	ctx.stack.Push(NewIntegerInt64(3))
	if err := ctx.step(OpRot); err != nil {
		t.Fatalf("ROT: %v", err)
	}
	got := []int64{mustInt(t, ctx.stack.items[0]), mustInt(t, ctx.stack.items[1]), mustInt(t, ctx.stack.items[2])}
	want := []int64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ROT: expected %v, got %v", want, got)
		}
	}

	ctx2 := newTestContext()
	ctx2.stack.Push(NewIntegerInt64(1))
	ctx2.stack.Push(NewIntegerInt64(2))
	if err := ctx2.step(OpTuck); err != nil {
		t.Fatalf("TUCK: %v", err)
	}
	if ctx2.stack.Len() != 3 || mustInt(t, ctx2.stack.items[0]) != 2 {
		t.Fatalf("TUCK: expected top item copied under the second-from-top item")
	}
}

func TestStepDepth(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewIntegerInt64(1))
	ctx.stack.Push(NewIntegerInt64(2))
	if err := ctx.step(OpDepth); err != nil {
		t.Fatalf("DEPTH: %v", err)
	}
	top, _ := ctx.stack.Peek(0)
	if mustInt(t, top) != 2 {
		t.Fatalf("expected depth 2, got %d", mustInt(t, top))
	}
}

func TestStepBufferOps(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewBuffer([]byte("hello")))
	ctx.stack.Push(NewBuffer([]byte(" world")))
	if err := ctx.step(OpCat); err != nil {
		t.Fatalf("CAT: %v", err)
	}
	buf, _ := mustPop(t, ctx).AsBuffer()
	if string(buf) != "hello world" {
		t.Fatalf("CAT: expected %q, got %q", "hello world", buf)
	}

	ctx.stack.Push(NewBuffer([]byte("abcdef")))
	ctx.stack.Push(NewIntegerInt64(1))
	ctx.stack.Push(NewIntegerInt64(4))
	if err := ctx.step(OpSubstr); err != nil {
		t.Fatalf("SUBSTR: %v", err)
	}
	buf, _ = mustPop(t, ctx).AsBuffer()
	if string(buf) != "bcd" {
		t.Fatalf("SUBSTR: expected %q, got %q", "bcd", buf)
	}

	ctx.stack.Push(NewBuffer([]byte("abcdef")))
	ctx.stack.Push(NewIntegerInt64(3))
	if err := ctx.step(OpLeft); err != nil {
		t.Fatalf("LEFT: %v", err)
	}
	buf, _ = mustPop(t, ctx).AsBuffer()
	if string(buf) != "abc" {
		t.Fatalf("LEFT: expected %q, got %q", "abc", buf)
	}

	ctx.stack.Push(NewBuffer([]byte("abcdef")))
	ctx.stack.Push(NewIntegerInt64(3))
	if err := ctx.step(OpRight); err != nil {
		t.Fatalf("RIGHT: %v", err)
	}
	buf, _ = mustPop(t, ctx).AsBuffer()
	if string(buf) != "def" {
		t.Fatalf("RIGHT: expected %q, got %q", "def", buf)
	}

	ctx.stack.Push(NewBuffer([]byte("abcdef")))
	if err := ctx.step(OpSize); err != nil {
		t.Fatalf("SIZE: %v", err)
	}
	if mustInt(t, mustPop(t, ctx)) != 6 {
		t.Fatalf("expected SIZE 6")
	}
}

func mustPop(t *testing.T, ctx *ExecutionContext) StackItem {
	t.Helper()
	v, err := ctx.stack.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	return v
}

func TestStepBitwiseAndEqual(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewIntegerInt64(6))
	ctx.stack.Push(NewIntegerInt64(3))
	if err := ctx.step(OpAnd); err != nil {
		t.Fatalf("AND: %v", err)
	}
	if mustInt(t, mustPop(t, ctx)) != 2 {
		t.Fatalf("expected 6&3=2")
	}

	ctx.stack.Push(NewIntegerInt64(6))
	ctx.stack.Push(NewIntegerInt64(3))
	if err := ctx.step(OpXor); err != nil {
		t.Fatalf("XOR: %v", err)
	}
	if mustInt(t, mustPop(t, ctx)) != 5 {
		t.Fatalf("expected 6^3=5")
	}

	ctx.stack.Push(NewIntegerInt64(5))
	ctx.stack.Push(NewIntegerInt64(5))
	if err := ctx.step(OpEqual); err != nil {
		t.Fatalf("EQUAL: %v", err)
	}
	if !mustPop(t, ctx).AsBool() {
		t.Fatalf("expected EQUAL true for equal integers")
	}
}

func TestStepComparisons(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewIntegerInt64(2))
	ctx.stack.Push(NewIntegerInt64(5))
	if err := ctx.step(OpLt); err != nil {
		t.Fatalf("LT: %v", err)
	}
	if !mustPop(t, ctx).AsBool() {
		t.Fatalf("expected 2 < 5")
	}

	ctx.stack.Push(NewIntegerInt64(5))
	ctx.stack.Push(NewIntegerInt64(1))
	ctx.stack.Push(NewIntegerInt64(10))
	if err := ctx.step(OpWithin); err != nil {
		t.Fatalf("WITHIN: %v", err)
	}
	if !mustPop(t, ctx).AsBool() {
		t.Fatalf("expected 5 within [1,10)")
	}
}

func TestStepHashingOpcodes(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewBuffer([]byte("abc")))
	if err := ctx.step(OpSha256); err != nil {
		t.Fatalf("SHA256: %v", err)
	}
	buf, _ := mustPop(t, ctx).AsBuffer()
	if len(buf) != 32 {
		t.Fatalf("expected 32-byte SHA256 digest, got %d", len(buf))
	}

	ctx.stack.Push(NewBuffer([]byte("abc")))
	if err := ctx.step(OpHash160); err != nil {
		t.Fatalf("HASH160: %v", err)
	}
	buf, _ = mustPop(t, ctx).AsBuffer()
	if len(buf) != 20 {
		t.Fatalf("expected 20-byte HASH160 digest, got %d", len(buf))
	}
}

func TestStepCheckSigValidAndInvalid(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	message := []byte("authorize transfer")
	digest := Sha256Sum(message)
	sig, err := gethcrypto.Sign(digest, key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	compact := sig[:64]
	pubCompressed := gethcrypto.CompressPubkey(&key.PublicKey)

	ctx := newRootContext(NewInMemoryBlockchain(), InitBundle{
		ScriptContainer: ScriptContainer{
			Kind:        ContainerTransaction,
			Transaction: &Transaction{Type: TxInvocation, SignedMessage: message},
		},
		Trigger: TriggerApplication,
	}, nil, false, UInt160{}, NewGasMeter(NewFixed8(1000)))

	ctx.stack.Push(NewBuffer(pubCompressed))
	ctx.stack.Push(NewBuffer(compact))
	if err := ctx.step(OpCheckSig); err != nil {
		t.Fatalf("CHECKSIG: %v", err)
	}
	if !mustPop(t, ctx).AsBool() {
		t.Fatalf("expected CHECKSIG to accept a valid signature")
	}

	tampered := append([]byte(nil), compact...)
	tampered[0] ^= 0xFF
	ctx.stack.Push(NewBuffer(pubCompressed))
	ctx.stack.Push(NewBuffer(tampered))
	if err := ctx.step(OpCheckSig); err != nil {
		t.Fatalf("CHECKSIG: %v", err)
	}
	if mustPop(t, ctx).AsBool() {
		t.Fatalf("expected CHECKSIG to reject a tampered signature")
	}
}

func TestStepArrayPackUnpackAndItemAccess(t *testing.T) {
	ctx := newTestContext()
	ctx.stack.Push(NewIntegerInt64(10))
	ctx.stack.Push(NewIntegerInt64(20))
	ctx.stack.Push(NewIntegerInt64(30))
	ctx.stack.Push(NewIntegerInt64(3))
	if err := ctx.step(OpPack); err != nil {
		t.Fatalf("PACK: %v", err)
	}
	arr := mustPop(t, ctx)
	items, err := arr.AsArray()
	if err != nil || len(items) != 3 {
		t.Fatalf("expected a 3-element array, got %v / %v", items, err)
	}
	// PACK pops in LIFO order, so items[0] is the last-pushed value (30).
	if mustInt(t, items[0]) != 30 || mustInt(t, items[2]) != 10 {
		t.Fatalf("unexpected PACK ordering: %v", items)
	}

	ctx.stack.Push(arr)
	if err := ctx.step(OpUnpack); err != nil {
		t.Fatalf("UNPACK: %v", err)
	}
	if mustInt(t, mustPop(t, ctx)) != 3 {
		t.Fatalf("expected element count 3 on top after UNPACK")
	}

	ctx.stack.Push(NewArray([]StackItem{NewIntegerInt64(7), NewIntegerInt64(8)}))
	ctx.stack.Push(NewIntegerInt64(1))
	if err := ctx.step(OpPickItem); err != nil {
		t.Fatalf("PICKITEM: %v", err)
	}
	if mustInt(t, mustPop(t, ctx)) != 8 {
		t.Fatalf("expected PICKITEM index 1 to be 8")
	}
}

func TestStepThrowAndThrowIfNot(t *testing.T) {
	ctx := newTestContext()
	if err := ctx.step(OpThrow); err == nil {
		t.Fatalf("expected THROW to fault")
	}

	ctx2 := newTestContext()
	ctx2.stack.Push(NewBoolean(false))
	if err := ctx2.step(OpThrowIfNot); err == nil {
		t.Fatalf("expected THROWIFNOT to fault on a false condition")
	}

	ctx3 := newTestContext()
	ctx3.stack.Push(NewBoolean(true))
	if err := ctx3.step(OpThrowIfNot); err != nil {
		t.Fatalf("expected THROWIFNOT to pass on a true condition: %v", err)
	}
}
