package core

import (
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func invokeSyscall(t *testing.T, ctx *ExecutionContext, name string) {
	t.Helper()
	d, ok := resolveSyscall(name)
	if !ok {
		t.Fatalf("syscall %s not found in catalogue", name)
	}
	if err := d.Invoke(ctx); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func TestSyscallRuntimeGetTrigger(t *testing.T) {
	ctx := newRootContext(NewInMemoryBlockchain(), InitBundle{Trigger: TriggerVerification}, nil, false, UInt160{}, NewGasMeter(NewFixed8(10)))
	invokeSyscall(t, ctx, "Neo.Runtime.GetTrigger")
	if mustInt(t, mustPop(t, ctx)) != int64(TriggerVerification) {
		t.Fatalf("expected TriggerVerification")
	}
}

func TestSyscallRuntimeCheckWitness(t *testing.T) {
	authorized := UInt160{0x01, 0x02, 0x03}
	init := InitBundle{
		ScriptContainer: ScriptContainer{
			Kind: ContainerTransaction,
			Transaction: &Transaction{
				Type:          TxInvocation,
				WitnessHashes: map[UInt160]struct{}{authorized: {}},
			},
		},
		Trigger: TriggerVerification,
	}
	ctx := newRootContext(NewInMemoryBlockchain(), init, nil, false, UInt160{}, NewGasMeter(NewFixed8(10)))

	ctx.stack.Push(NewBuffer(authorized[:]))
	invokeSyscall(t, ctx, "Neo.Runtime.CheckWitness")
	if !mustPop(t, ctx).AsBool() {
		t.Fatalf("expected CheckWitness true for an authorized hash")
	}

	other := UInt160{0xAA}
	ctx.stack.Push(NewBuffer(other[:]))
	invokeSyscall(t, ctx, "Neo.Runtime.CheckWitness")
	if mustPop(t, ctx).AsBool() {
		t.Fatalf("expected CheckWitness false for an unauthorized hash")
	}
}

// Legacy AntShares.* names must resolve to the same descriptor as their
// Neo.* counterpart (§4.4 "legacy AntShares.* names canonicalize to Neo.*").
func TestSyscallLegacyAliasResolves(t *testing.T) {
	canonical, ok := resolveSyscall("Neo.Runtime.GetTrigger")
	if !ok {
		t.Fatalf("expected Neo.Runtime.GetTrigger to resolve")
	}
	legacy, ok := resolveSyscall("AntShares.Runtime.GetTrigger")
	if !ok {
		t.Fatalf("expected AntShares.Runtime.GetTrigger to resolve via alias")
	}
	if legacy.Fee != canonical.Fee {
		t.Fatalf("expected alias to resolve to the same descriptor fee")
	}
}

func TestSyscallRuntimeNotifyAndLog(t *testing.T) {
	ctx := newRootContext(NewInMemoryBlockchain(), testInit(), nil, false, UInt160{0x09}, NewGasMeter(NewFixed8(10)))

	ctx.stack.Push(NewIntegerInt64(42))
	invokeSyscall(t, ctx, "Neo.Runtime.Notify")

	ctx.stack.Push(NewBuffer([]byte("hello")))
	invokeSyscall(t, ctx, "Neo.Runtime.Log")

	actions := ctx.actions.Actions()
	if len(actions) != 2 {
		t.Fatalf("expected 2 emitted actions, got %d", len(actions))
	}
	if actions[0].Kind != ActionNotification {
		t.Fatalf("expected first action to be a notification")
	}
	if actions[1].Kind != ActionLog || actions[1].Message != "hello" {
		t.Fatalf("expected second action to be a log with message %q, got %q", "hello", actions[1].Message)
	}
	if actions[0].Index >= actions[1].Index {
		t.Fatalf("expected strictly increasing action indices, got %d then %d", actions[0].Index, actions[1].Index)
	}
}

func TestSyscallStoragePutGetDelete(t *testing.T) {
	bc := NewInMemoryBlockchain()
	contractHash := UInt160{0x07}
	if err := bc.Contracts().Add(contractHash, &Contract{Hash: contractHash, HasStorage: true}); err != nil {
		t.Fatalf("Contracts().Add: %v", err)
	}

	ctx := newRootContext(bc, testInit(), nil, false, contractHash, NewGasMeter(NewFixed8(10)))

	invokeSyscall(t, ctx, "Neo.Storage.GetContext")
	storeCtx := mustPop(t, ctx)
	ctx.stack.Push(storeCtx)
	ctx.stack.Push(NewBuffer([]byte("key")))
	ctx.stack.Push(NewBuffer([]byte("value")))
	invokeSyscall(t, ctx, "Neo.Storage.Put")

	invokeSyscall(t, ctx, "Neo.Storage.GetContext")
	ctx.stack.Push(NewBuffer([]byte("key")))
	invokeSyscall(t, ctx, "Neo.Storage.Get")
	buf, err := mustPop(t, ctx).AsBuffer()
	if err != nil || string(buf) != "value" {
		t.Fatalf("expected stored value %q, got %q (%v)", "value", buf, err)
	}

	invokeSyscall(t, ctx, "Neo.Storage.GetContext")
	ctx.stack.Push(NewBuffer([]byte("key")))
	invokeSyscall(t, ctx, "Neo.Storage.Delete")

	invokeSyscall(t, ctx, "Neo.Storage.GetContext")
	ctx.stack.Push(NewBuffer([]byte("key")))
	invokeSyscall(t, ctx, "Neo.Storage.Get")
	buf, _ = mustPop(t, ctx).AsBuffer()
	if len(buf) != 0 {
		t.Fatalf("expected empty buffer after delete, got %q", buf)
	}
}

func TestSyscallStorageRequiresHasStorageFlag(t *testing.T) {
	bc := NewInMemoryBlockchain()
	contractHash := UInt160{0x08}
	if err := bc.Contracts().Add(contractHash, &Contract{Hash: contractHash, HasStorage: false}); err != nil {
		t.Fatalf("Contracts().Add: %v", err)
	}
	ctx := newRootContext(bc, testInit(), nil, false, contractHash, NewGasMeter(NewFixed8(10)))

	invokeSyscall(t, ctx, "Neo.Storage.GetContext")
	storeCtx := mustPop(t, ctx)
	ctx.stack.Push(storeCtx)
	ctx.stack.Push(NewBuffer([]byte("key")))
	d, _ := resolveSyscall("Neo.Storage.Get")
	if err := d.Invoke(ctx); err == nil {
		t.Fatalf("expected Storage.Get to fault for a contract without HasStorage")
	}
}

func TestSyscallAccountSetVotesRequiresWitness(t *testing.T) {
	bc := NewInMemoryBlockchain()
	accHash := UInt160{0x0A}
	if err := bc.Accounts().Add(accHash, &Account{ScriptHash: accHash, Balances: map[UInt256]Fixed8{}}); err != nil {
		t.Fatalf("Accounts().Add: %v", err)
	}
	ctx := newRootContext(bc, testInit(), nil, false, UInt160{}, NewGasMeter(NewFixed8(10)))

	ctx.stack.Push(NewBuffer(accHash[:]))
	ctx.stack.Push(NewArray(nil))
	d, _ := resolveSyscall("Neo.Account.SetVotes")
	if err := d.Invoke(ctx); err != ErrBadWitness {
		t.Fatalf("expected ErrBadWitness without an authorizing witness, got %v", err)
	}
}

// pushCreateArgs pushes the 9 Contract.Create arguments in the order
// popContractArgs expects to pop them (script pushed first, description last).
func pushCreateArgs(ctx *ExecutionContext, script []byte) {
	ctx.stack.Push(NewBuffer(script))
	ctx.stack.Push(NewBuffer(nil))         // parameterList
	ctx.stack.Push(NewIntegerInt64(0))     // returnType
	ctx.stack.Push(NewBoolean(false))      // properties (hasStorage)
	ctx.stack.Push(NewBuffer([]byte("n"))) // name
	ctx.stack.Push(NewBuffer([]byte("v"))) // version
	ctx.stack.Push(NewBuffer([]byte("a"))) // author
	ctx.stack.Push(NewBuffer([]byte("e"))) // email
	ctx.stack.Push(NewBuffer([]byte("d"))) // description
}

// Contract.GetStorageContext must only succeed for the frame that actually
// created the contract, not any frame in the same invocation tree (§4.4
// "createdContracts[contract.hash] == ctx.scriptHash").
func TestSyscallContractGetStorageContextRequiresCreator(t *testing.T) {
	bc := NewInMemoryBlockchain()
	creator := UInt160{0x01}
	other := UInt160{0x02}
	gas := NewGasMeter(NewFixed8(10))

	creatorCtx := newRootContext(bc, testInit(), nil, false, creator, gas)
	pushCreateArgs(creatorCtx, []byte{0x51})
	invokeSyscall(t, creatorCtx, "Neo.Contract.Create")
	created := mustPop(t, creatorCtx)
	createdContract, err := ObjectPayload(created, ObjContract)
	if err != nil {
		t.Fatalf("ObjectPayload: %v", err)
	}
	contractHash := createdContract.(*Contract).Hash

	// The creating frame can obtain its own StorageContext.
	creatorCtx.stack.Push(NewObject(ObjContract, createdContract))
	invokeSyscall(t, creatorCtx, "Neo.Contract.GetStorageContext")
	mustPop(t, creatorCtx)

	// A sibling frame sharing the same createdContracts map (as APPCALL
	// frames do) but a different scriptHash must be rejected.
	otherCtx := creatorCtx.derive(nil, other, true)
	otherCtx.stack.Push(NewObject(ObjContract, createdContract))
	d, _ := resolveSyscall("Neo.Contract.GetStorageContext")
	if err := d.Invoke(otherCtx); err != ErrInvalidGetStorageContext {
		t.Fatalf("expected ErrInvalidGetStorageContext for a non-creator frame, got %v (hash %x)", err, contractHash)
	}
}

func TestCheckMultisigForwardCursorSkipsUnmatchedKeys(t *testing.T) {
	message := []byte("multisig test message")

	k1, _ := gethcrypto.GenerateKey()
	k2, _ := gethcrypto.GenerateKey()
	k3, _ := gethcrypto.GenerateKey()
	pub1 := gethcrypto.CompressPubkey(&k1.PublicKey)
	pub2 := gethcrypto.CompressPubkey(&k2.PublicKey)
	pub3 := gethcrypto.CompressPubkey(&k3.PublicKey)

	digest := Sha256Sum(message)
	sig1, _ := gethcrypto.Sign(digest, k1)
	sig3, _ := gethcrypto.Sign(digest, k3)

	init := InitBundle{
		ScriptContainer: ScriptContainer{
			Kind:        ContainerTransaction,
			Transaction: &Transaction{Type: TxInvocation, SignedMessage: message},
		},
		Trigger: TriggerVerification,
	}
	ctx := newRootContext(NewInMemoryBlockchain(), init, nil, false, UInt160{}, NewGasMeter(NewFixed8(10)))

	pkItems := []StackItem{NewBuffer(pub1), NewBuffer(pub2), NewBuffer(pub3)}
	// Signatures for keys 1 and 3, skipping key 2 — the forward cursor must
	// still accept this since it advances the key cursor on every mismatch.
	sigItems := []StackItem{NewBuffer(sig1[:64]), NewBuffer(sig3[:64])}

	ctx.stack.Push(NewArray(pkItems))
	ctx.stack.Push(NewArray(sigItems))
	if err := ctx.step(OpCheckMultisig); err != nil {
		t.Fatalf("CHECKMULTISIG: %v", err)
	}
	if !mustPop(t, ctx).AsBool() {
		t.Fatalf("expected CHECKMULTISIG to accept signatures for keys 1 and 3 out of 3")
	}

	// Reversed signature order cannot be satisfied by the forward cursor.
	ctx.stack.Push(NewArray(pkItems))
	ctx.stack.Push(NewArray([]StackItem{NewBuffer(sig3[:64]), NewBuffer(sig1[:64])}))
	if err := ctx.step(OpCheckMultisig); err != nil {
		t.Fatalf("CHECKMULTISIG: %v", err)
	}
	if mustPop(t, ctx).AsBool() {
		t.Fatalf("expected CHECKMULTISIG to reject out-of-order signatures")
	}
}
