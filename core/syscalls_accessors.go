package core

import "math/big"

// Header.*/Block.*/Transaction.*/Attribute.*/Input.*/Output.*/Account.*/
// Asset.*/Contract.GetScript accessors (§4.4 "Accessors"). Each pops the
// Object the accessor projects from, type-asserts its payload, and pushes a
// scalar or nested Object/Array result.

func registerAccessorSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Header.GetHash"] = syscallDescriptor{Invoke: accessorHeader(func(h *Header) StackItem {
		return NewObject(ObjUInt256, h.Hash())
	})}
	t["Neo.Header.GetPrevHash"] = syscallDescriptor{Invoke: accessorHeader(func(h *Header) StackItem {
		return NewObject(ObjUInt256, h.PrevHash)
	})}
	t["Neo.Header.GetMerkleRoot"] = syscallDescriptor{Invoke: accessorHeader(func(h *Header) StackItem {
		return NewObject(ObjUInt256, h.MerkleRoot)
	})}
	t["Neo.Header.GetTimestamp"] = syscallDescriptor{Invoke: accessorHeader(func(h *Header) StackItem {
		return NewIntegerInt64(int64(h.Timestamp))
	})}
	t["Neo.Header.GetIndex"] = syscallDescriptor{Invoke: accessorHeader(func(h *Header) StackItem {
		return NewIntegerInt64(int64(h.Index))
	})}
	t["Neo.Header.GetNextConsensus"] = syscallDescriptor{Invoke: accessorHeader(func(h *Header) StackItem {
		return NewObject(ObjUInt160, h.NextConsensus)
	})}

	t["Neo.Block.GetTransactionCount"] = syscallDescriptor{Invoke: blockGetTransactionCount}
	t["Neo.Block.GetTransactions"] = syscallDescriptor{Invoke: blockGetTransactions}
	t["Neo.Block.GetTransaction"] = syscallDescriptor{Invoke: blockGetTransaction}

	t["Neo.Transaction.GetHash"] = syscallDescriptor{Invoke: accessorTransaction(func(tx *Transaction) StackItem {
		return NewObject(ObjUInt256, tx.Hash)
	})}
	t["Neo.Transaction.GetType"] = syscallDescriptor{Invoke: accessorTransaction(func(tx *Transaction) StackItem {
		return NewIntegerInt64(int64(tx.Type))
	})}
	t["Neo.Transaction.GetAttributes"] = syscallDescriptor{Invoke: accessorTransaction(func(tx *Transaction) StackItem {
		items := make([]StackItem, len(tx.Attributes))
		for i, a := range tx.Attributes {
			items[i] = NewObject(ObjAttribute, a)
		}
		return NewArray(items)
	})}
	t["Neo.Transaction.GetInputs"] = syscallDescriptor{Invoke: accessorTransaction(func(tx *Transaction) StackItem {
		items := make([]StackItem, len(tx.Inputs))
		for i, in := range tx.Inputs {
			items[i] = NewObject(ObjInput, in)
		}
		return NewArray(items)
	})}
	t["Neo.Transaction.GetOutputs"] = syscallDescriptor{Invoke: accessorTransaction(func(tx *Transaction) StackItem {
		items := make([]StackItem, len(tx.Outputs))
		for i, o := range tx.Outputs {
			items[i] = NewObject(ObjOutput, o)
		}
		return NewArray(items)
	})}
	t["Neo.Transaction.GetReferences"] = syscallDescriptor{Invoke: accessorTransaction(func(tx *Transaction) StackItem {
		items := make([]StackItem, len(tx.Inputs))
		for i := range tx.Inputs {
			if ref, ok := tx.References[i]; ok {
				items[i] = NewObject(ObjOutput, ref)
			} else {
				items[i] = NewObject(ObjOutput, (*Output)(nil))
			}
		}
		return NewArray(items)
	})}

	t["Neo.Attribute.GetUsage"] = syscallDescriptor{Invoke: accessorAttribute(func(a *Attribute) StackItem {
		return NewIntegerInt64(int64(a.Usage))
	})}
	t["Neo.Attribute.GetData"] = syscallDescriptor{Invoke: accessorAttribute(func(a *Attribute) StackItem {
		return NewBuffer(a.Data)
	})}

	t["Neo.Input.GetHash"] = syscallDescriptor{Invoke: accessorInput(func(in *Input) StackItem {
		return NewObject(ObjUInt256, in.PrevHash)
	})}
	t["Neo.Input.GetIndex"] = syscallDescriptor{Invoke: accessorInput(func(in *Input) StackItem {
		return NewIntegerInt64(int64(in.PrevIndex))
	})}

	t["Neo.Output.GetAssetId"] = syscallDescriptor{Invoke: accessorOutput(func(o *Output) StackItem {
		return NewObject(ObjUInt256, o.AssetID)
	})}
	t["Neo.Output.GetValue"] = syscallDescriptor{Invoke: accessorOutput(func(o *Output) StackItem {
		return NewIntegerInt64(int64(o.Value))
	})}
	t["Neo.Output.GetScriptHash"] = syscallDescriptor{Invoke: accessorOutput(func(o *Output) StackItem {
		return NewObject(ObjUInt160, o.ScriptHash)
	})}

	t["Neo.Account.GetScriptHash"] = syscallDescriptor{Invoke: accessorAccount(func(a *Account) StackItem {
		return NewObject(ObjUInt160, a.ScriptHash)
	})}
	t["Neo.Account.GetVotes"] = syscallDescriptor{Invoke: accessorAccount(func(a *Account) StackItem {
		items := make([]StackItem, len(a.Votes))
		for i, v := range a.Votes {
			items[i] = NewObject(ObjECPoint, v)
		}
		return NewArray(items)
	})}
	t["Neo.Account.GetBalance"] = syscallDescriptor{Invoke: accountGetBalance}

	t["Neo.Asset.GetAssetId"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewObject(ObjUInt256, a.AssetID)
	})}
	t["Neo.Asset.GetAssetType"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewIntegerInt64(int64(a.Type))
	})}
	t["Neo.Asset.GetAmount"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewIntegerInt64(int64(a.Amount))
	})}
	t["Neo.Asset.GetAvailable"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewIntegerInt64(int64(a.Available))
	})}
	t["Neo.Asset.GetPrecision"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewIntegerInt64(int64(a.Precision))
	})}
	t["Neo.Asset.GetOwner"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewObject(ObjECPoint, a.Owner)
	})}
	t["Neo.Asset.GetAdmin"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewObject(ObjUInt160, a.Admin)
	})}
	t["Neo.Asset.GetIssuer"] = syscallDescriptor{Invoke: accessorAsset(func(a *Asset) StackItem {
		return NewObject(ObjUInt160, a.Issuer)
	})}

	t["Neo.Contract.GetScript"] = syscallDescriptor{Invoke: accessorContract(func(c *Contract) StackItem {
		return NewBuffer(c.Script)
	})}
}

func accessorHeader(proj func(*Header) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjHeader)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Header)))
		return nil
	}
}

func accessorTransaction(proj func(*Transaction) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjTransaction)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Transaction)))
		return nil
	}
}

func accessorAttribute(proj func(*Attribute) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjAttribute)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Attribute)))
		return nil
	}
}

func accessorInput(proj func(*Input) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjInput)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Input)))
		return nil
	}
}

func accessorOutput(proj func(*Output) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjOutput)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Output)))
		return nil
	}
}

func accessorAccount(proj func(*Account) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjAccount)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Account)))
		return nil
	}
}

func accessorAsset(proj func(*Asset) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjAsset)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Asset)))
		return nil
	}
}

func accessorContract(proj func(*Contract) StackItem) syscallFunc {
	return func(ctx *ExecutionContext) error {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		p, err := ObjectPayload(v, ObjContract)
		if err != nil {
			return err
		}
		ctx.stack.Push(proj(p.(*Contract)))
		return nil
	}
}

func blockGetTransactionCount(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	p, err := ObjectPayload(v, ObjBlock)
	if err != nil {
		return err
	}
	ctx.stack.Push(NewIntegerInt64(int64(len(p.(*Block).Transactions))))
	return nil
}

func blockGetTransactions(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	p, err := ObjectPayload(v, ObjBlock)
	if err != nil {
		return err
	}
	txs := p.(*Block).Transactions
	items := make([]StackItem, len(txs))
	for i, tx := range txs {
		items[i] = NewObject(ObjTransaction, tx)
	}
	ctx.stack.Push(NewArray(items))
	return nil
}

func blockGetTransaction(ctx *ExecutionContext) error {
	idxItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	blockItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	p, err := ObjectPayload(blockItem, ObjBlock)
	if err != nil {
		return err
	}
	idx, err := ToInt64(idxItem)
	txs := p.(*Block).Transactions
	if err != nil || idx < 0 || int(idx) >= len(txs) {
		return ErrInvalidIndex
	}
	ctx.stack.Push(NewObject(ObjTransaction, txs[idx]))
	return nil
}

func accountGetBalance(ctx *ExecutionContext) error {
	assetItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	accItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	p, err := ObjectPayload(accItem, ObjAccount)
	if err != nil {
		return err
	}
	assetBuf, err := assetItem.AsBuffer()
	if err != nil {
		return err
	}
	assetID, err := UInt256FromBytes(assetBuf)
	if err != nil {
		return err
	}
	acc := p.(*Account)
	bal := acc.Balances[assetID]
	ctx.stack.Push(NewInteger(big.NewInt(int64(bal))))
	return nil
}
