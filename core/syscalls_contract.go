package core

// Neo.Contract.* (§4.4 "Contract.Create/Migrate/GetStorageContext/Destroy").

func registerContractSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Contract.Create"] = syscallDescriptor{Invoke: contractCreate}
	t["Neo.Contract.Migrate"] = syscallDescriptor{Invoke: contractMigrate}
	t["Neo.Contract.GetStorageContext"] = syscallDescriptor{Invoke: contractGetStorageContext}
	t["Neo.Contract.Destroy"] = syscallDescriptor{Invoke: contractDestroy}
}

// popContractArgs pops, in reverse push order: description, email, author,
// version, name, properties (hasStorage), returnType, parameterList, script
// (§4.4 "Contract.Create(...9 args)").
func popContractArgs(ctx *ExecutionContext) (*Contract, error) {
	description, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	email, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	author, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	version, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	name, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	propsItem, err := ctx.stack.Pop()
	if err != nil {
		return nil, err
	}
	returnTypeItem, err := ctx.stack.Pop()
	if err != nil {
		return nil, err
	}
	paramList, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	script, err := popBuf(ctx)
	if err != nil {
		return nil, err
	}
	returnType, err := ToInt64(returnTypeItem)
	if err != nil {
		return nil, err
	}
	return &Contract{
		Hash:          Hash160(script),
		Script:        script,
		ParameterList: paramList,
		ReturnType:    byte(returnType),
		HasStorage:    propsItem.AsBool(),
		Name:          string(name),
		Version:       string(version),
		Author:        string(author),
		Email:         string(email),
		Description:   string(description),
	}, nil
}

func contractCreate(ctx *ExecutionContext) error {
	c, err := popContractArgs(ctx)
	if err != nil {
		return err
	}
	existing, found, err := ctx.blockchain.Contracts().TryGet(c.Hash)
	if err != nil {
		return err
	}
	if found {
		ctx.stack.Push(NewObject(ObjContract, existing))
		return nil
	}
	if err := ctx.blockchain.Contracts().Add(c.Hash, c); err != nil {
		return err
	}
	ctx.markCreated(c.Hash)
	ctx.stack.Push(NewObject(ObjContract, c))
	return nil
}

func contractMigrate(ctx *ExecutionContext) error {
	c, err := popContractArgs(ctx)
	if err != nil {
		return err
	}
	_, found, err := ctx.blockchain.Contracts().TryGet(c.Hash)
	if err != nil {
		return err
	}
	if found {
		ctx.stack.Push(NewObject(ObjContract, c))
		return nil
	}
	if err := ctx.blockchain.Contracts().Add(c.Hash, c); err != nil {
		return err
	}
	ctx.markCreated(c.Hash)

	if c.HasStorage {
		if sc, ok := ctx.blockchain.Storage().(*storageCollection); ok {
			for _, kv := range sc.entries(ctx.scriptHash) {
				if err := ctx.blockchain.Storage().Add(StorageKey{Contract: c.Hash, Key: kv.Key}, kv.Value); err != nil {
					return err
				}
			}
		}
	}
	ctx.stack.Push(NewObject(ObjContract, c))
	return nil
}

func contractGetStorageContext(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	p, err := ObjectPayload(v, ObjContract)
	if err != nil {
		return err
	}
	c := p.(*Contract)
	creator, ok := ctx.creatorOf(c.Hash)
	if !ok || creator != ctx.scriptHash {
		return ErrInvalidGetStorageContext
	}
	ctx.stack.Push(NewObject(ObjStorageContext, c.Hash))
	return nil
}

func contractDestroy(ctx *ExecutionContext) error {
	hash, err := popUInt160(ctx)
	if err != nil {
		return err
	}
	c, found, err := ctx.blockchain.Contracts().TryGet(hash)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if c.HasStorage {
		if sc, ok := ctx.blockchain.Storage().(*storageCollection); ok {
			for _, kv := range sc.entries(hash) {
				if err := ctx.blockchain.Storage().Delete(StorageKey{Contract: hash, Key: kv.Key}); err != nil {
					return err
				}
			}
		}
	}
	return ctx.blockchain.Contracts().Delete(hash)
}
