package core

// Neo.Blockchain.* readers (§4.4 "Blockchain readers"). Grounded on the C7
// facade (core/ledger.go) — every reader is a thin projection from a
// Blockchain collection onto an Object stack item.

func registerBlockchainSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Blockchain.GetHeight"] = syscallDescriptor{Invoke: blockchainGetHeight}
	t["Neo.Blockchain.GetHeader"] = syscallDescriptor{Invoke: blockchainGetHeader}
	t["Neo.Blockchain.GetBlock"] = syscallDescriptor{Invoke: blockchainGetBlock}
	t["Neo.Blockchain.GetTransaction"] = syscallDescriptor{Invoke: blockchainGetTransaction}
	t["Neo.Blockchain.GetAccount"] = syscallDescriptor{Invoke: blockchainGetAccount}
	t["Neo.Blockchain.GetAsset"] = syscallDescriptor{Invoke: blockchainGetAsset}
	t["Neo.Blockchain.GetContract"] = syscallDescriptor{Invoke: blockchainGetContract}
	t["Neo.Blockchain.GetValidators"] = syscallDescriptor{Invoke: blockchainGetValidators}
}

func blockchainGetHeight(ctx *ExecutionContext) error {
	ctx.stack.Push(NewIntegerInt64(int64(ctx.blockchain.Height())))
	return nil
}

func blockchainGetHeader(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	hash, index, isHash, err := decodeHashOrIndex(v)
	if err != nil {
		return err
	}
	var h *Header
	if isHash {
		h, err = ctx.blockchain.Headers().Get(hash)
	} else {
		h, err = ctx.blockchain.HeaderByIndex(index)
	}
	if err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjHeader, h))
	return nil
}

func blockchainGetBlock(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	hash, index, isHash, err := decodeHashOrIndex(v)
	if err != nil {
		return err
	}
	var b *Block
	if isHash {
		b, err = ctx.blockchain.Blocks().Get(hash)
	} else {
		b, err = ctx.blockchain.BlockByIndex(index)
	}
	if err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjBlock, b))
	return nil
}

func blockchainGetTransaction(ctx *ExecutionContext) error {
	hash, err := popUInt256(ctx)
	if err != nil {
		return err
	}
	tx, err := ctx.blockchain.Transactions().Get(hash)
	if err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjTransaction, tx))
	return nil
}

func blockchainGetAccount(ctx *ExecutionContext) error {
	hash, err := popUInt160(ctx)
	if err != nil {
		return err
	}
	acc, err := ctx.blockchain.Accounts().Get(hash)
	if err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjAccount, acc))
	return nil
}

func blockchainGetAsset(ctx *ExecutionContext) error {
	hash, err := popUInt256(ctx)
	if err != nil {
		return err
	}
	a, err := ctx.blockchain.Assets().Get(hash)
	if err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjAsset, a))
	return nil
}

func blockchainGetContract(ctx *ExecutionContext) error {
	hash, err := popUInt160(ctx)
	if err != nil {
		return err
	}
	c, err := ctx.blockchain.Contracts().Get(hash)
	if err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjContract, c))
	return nil
}

func blockchainGetValidators(ctx *ExecutionContext) error {
	vs, err := ctx.blockchain.Validators().All()
	if err != nil {
		return err
	}
	items := make([]StackItem, len(vs))
	for i, v := range vs {
		items[i] = NewObject(ObjECPoint, v.PublicKey)
	}
	ctx.stack.Push(NewArray(items))
	return nil
}

func popUInt160(ctx *ExecutionContext) (UInt160, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return UInt160{}, err
	}
	buf, err := v.AsBuffer()
	if err != nil {
		return UInt160{}, err
	}
	return UInt160FromBytes(buf)
}

func popUInt256(ctx *ExecutionContext) (UInt256, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return UInt256{}, err
	}
	buf, err := v.AsBuffer()
	if err != nil {
		return UInt256{}, err
	}
	return UInt256FromBytes(buf)
}
