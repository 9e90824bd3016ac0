package core

// Neo.Storage.* (§4.4 "Storage"). A StorageContext Object wraps the
// UInt160 of the contract its Get/Put/Delete calls are scoped to; GetContext
// always returns one bound to the currently executing script, and Contract.GetStorageContext
// (syscalls_contract.go) is the only other way to obtain one for a
// different contract.

func registerStorageSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Storage.GetContext"] = syscallDescriptor{Invoke: storageGetContext}
	t["Neo.Storage.Get"] = syscallDescriptor{Invoke: storageGet}
	t["Neo.Storage.Put"] = syscallDescriptor{Invoke: storagePut}
	t["Neo.Storage.Delete"] = syscallDescriptor{Invoke: storageDelete}
}

func storageGetContext(ctx *ExecutionContext) error {
	ctx.stack.Push(NewObject(ObjStorageContext, ctx.scriptHash))
	return nil
}

func popStorageContext(ctx *ExecutionContext) (UInt160, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return UInt160{}, err
	}
	p, err := ObjectPayload(v, ObjStorageContext)
	if err != nil {
		return UInt160{}, err
	}
	return p.(UInt160), nil
}

func storageGet(ctx *ExecutionContext) error {
	keyItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	contract, err := popStorageContext(ctx)
	if err != nil {
		return err
	}
	if err := requireStorage(ctx, contract); err != nil {
		return err
	}
	key, err := keyItem.AsBuffer()
	if err != nil {
		return err
	}
	item, ok, err := ctx.blockchain.Storage().TryGet(StorageKey{Contract: contract, Key: string(key)})
	if err != nil {
		return err
	}
	if !ok {
		ctx.stack.Push(NewBuffer(nil))
		return nil
	}
	ctx.stack.Push(NewBuffer(item.Value))
	return nil
}

func storagePut(ctx *ExecutionContext) error {
	valueItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	keyItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	contract, err := popStorageContext(ctx)
	if err != nil {
		return err
	}
	if err := requireStorage(ctx, contract); err != nil {
		return err
	}
	key, err := keyItem.AsBuffer()
	if err != nil {
		return err
	}
	value, err := valueItem.AsBuffer()
	if err != nil {
		return err
	}
	if len(value) > MaxItemSize {
		return ErrItemTooLarge
	}
	return ctx.blockchain.Storage().Add(StorageKey{Contract: contract, Key: string(key)}, &StorageItem{Value: value})
}

func storageDelete(ctx *ExecutionContext) error {
	keyItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	contract, err := popStorageContext(ctx)
	if err != nil {
		return err
	}
	if err := requireStorage(ctx, contract); err != nil {
		return err
	}
	key, err := keyItem.AsBuffer()
	if err != nil {
		return err
	}
	return ctx.blockchain.Storage().Delete(StorageKey{Contract: contract, Key: string(key)})
}

func requireStorage(ctx *ExecutionContext, contract UInt160) error {
	c, err := ctx.blockchain.Contracts().Get(contract)
	if err != nil {
		return err
	}
	if !c.HasStorage {
		return ErrContractNoStorage
	}
	return nil
}
