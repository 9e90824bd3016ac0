package core

// Neo.Validator.Register (§4.4 "Validator.Register").

func registerValidatorSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Validator.Register"] = syscallDescriptor{Invoke: validatorRegister}
}

func validatorRegister(ctx *ExecutionContext) error {
	pkItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	pkBuf, err := pkItem.AsBuffer()
	if err != nil {
		return err
	}
	pk, err := ECPointFromBytes(pkBuf)
	if err != nil {
		return err
	}
	witnesses := ctx.init.ScriptContainer.WitnessHashes()
	if _, ok := witnesses[pk.ScriptHash()]; !ok {
		return ErrBadWitness
	}
	key := KeyOf(pk)
	if _, ok, err := ctx.blockchain.Validators().TryGet(key); err != nil {
		return err
	} else if ok {
		ctx.stack.Push(NewBoolean(true))
		return nil
	}
	if err := ctx.blockchain.Validators().Add(key, &Validator{PublicKey: pk, Registered: true}); err != nil {
		return err
	}
	ctx.stack.Push(NewBoolean(true))
	return nil
}
