package core

// Neo.Asset.Create / Neo.Asset.Renew (§4.4). Arguments are popped in the
// reverse of their push order, the convention used throughout this VM's
// calling syscalls.

func registerAssetSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Asset.Create"] = syscallDescriptor{Invoke: assetCreate}
	t["Neo.Asset.Renew"] = syscallDescriptor{Invoke: assetRenew}
}

// assetCreate pops, in reverse push order: issuer, admin, owner, precision,
// amount, name, assetType (§4.4 "Asset.Create(...7 args)").
func assetCreate(ctx *ExecutionContext) error {
	issuerBuf, err := popBuf(ctx)
	if err != nil {
		return err
	}
	adminBuf, err := popBuf(ctx)
	if err != nil {
		return err
	}
	ownerBuf, err := popBuf(ctx)
	if err != nil {
		return err
	}
	precisionItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	amountItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	nameBuf, err := popBuf(ctx)
	if err != nil {
		return err
	}
	typeItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}

	if ctx.init.ScriptContainer.Kind != ContainerTransaction ||
		ctx.init.ScriptContainer.Transaction == nil ||
		ctx.init.ScriptContainer.Transaction.Type != TxInvocation {
		return ErrUnexpectedScriptContainer
	}

	assetType, err := ToInt64(typeItem)
	if err != nil {
		return err
	}
	at := AssetType(assetType)
	if at == AssetGoverningToken || at == AssetUtilityToken {
		return ErrInvalidAssetType
	}
	if len(nameBuf) > MaxAssetNameLength {
		return ErrInvalidAssetType
	}

	owner, err := ECPointFromBytes(ownerBuf)
	if err != nil {
		return err
	}
	witnesses := ctx.init.ScriptContainer.WitnessHashes()
	if _, ok := witnesses[owner.ScriptHash()]; !ok {
		return ErrBadWitness
	}

	admin, err := UInt160FromBytes(adminBuf)
	if err != nil {
		return err
	}
	issuer, err := UInt160FromBytes(issuerBuf)
	if err != nil {
		return err
	}
	amount, err := amountItem.AsBigInteger()
	if err != nil {
		return err
	}
	precision, err := ToInt64(precisionItem)
	if err != nil {
		return err
	}

	hash := ctx.init.ScriptContainer.Transaction.Hash
	asset := &Asset{
		AssetID:    hash,
		Type:       at,
		Name:       string(nameBuf),
		Amount:     Fixed8(amount.Int64()),
		Available:  0,
		Precision:  byte(precision),
		Owner:      owner,
		Admin:      admin,
		Issuer:     issuer,
		Expiration: ctx.blockchain.Height() + 1 + BlockHeightYear,
	}
	if err := ctx.blockchain.Assets().Add(hash, asset); err != nil {
		return err
	}
	ctx.stack.Push(NewObject(ObjAsset, asset))
	return nil
}

// assetRenew pops years then the Asset object.
func assetRenew(ctx *ExecutionContext) error {
	yearsItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	assetItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	p, err := ObjectPayload(assetItem, ObjAsset)
	if err != nil {
		return err
	}
	asset := p.(*Asset)
	years, err := ToInt64(yearsItem)
	if err != nil {
		return err
	}
	base := asset.Expiration
	if min := ctx.blockchain.Height() + 1; min > base {
		base = min
	}
	extended := int64(base) + years*BlockHeightYear
	if extended > int64(^uint32(0)) {
		extended = int64(^uint32(0))
	}
	asset.Expiration = uint32(extended)
	if err := ctx.blockchain.Assets().Update(asset.AssetID, asset); err != nil {
		return err
	}
	ctx.stack.Push(NewIntegerInt64(int64(asset.Expiration)))
	return nil
}

func popBuf(ctx *ExecutionContext) ([]byte, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return nil, err
	}
	return v.AsBuffer()
}
