package core

// Neo.Runtime.* (§4.4 "Runtime"). Grounded on the teacher's AddLog/receipt
// accumulation idiom (core/virtual_machine.go's memState.AddLog), recast as
// action emission against the shared per-invocation-tree actionLog.

func registerRuntimeSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Runtime.GetTrigger"] = syscallDescriptor{Invoke: runtimeGetTrigger}
	t["Neo.Runtime.CheckWitness"] = syscallDescriptor{Invoke: runtimeCheckWitness}
	t["Neo.Runtime.Notify"] = syscallDescriptor{Invoke: runtimeNotify}
	t["Neo.Runtime.Log"] = syscallDescriptor{Invoke: runtimeLog}
}

func runtimeGetTrigger(ctx *ExecutionContext) error {
	ctx.stack.Push(NewIntegerInt64(int64(ctx.init.Trigger)))
	return nil
}

// runtimeCheckWitness: if the supplied buffer is a 33-byte compressed EC
// point and not the point at infinity, reduce it to its verification script
// hash first; then look up membership in the container's witness set.
func runtimeCheckWitness(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	buf, err := v.AsBuffer()
	if err != nil {
		return err
	}
	var h UInt160
	if len(buf) == 33 {
		pk, err := ECPointFromBytes(buf)
		if err == nil && !pk.IsInfinity() {
			h = pk.ScriptHash()
		} else {
			h, err = UInt160FromBytes(buf)
			if err != nil {
				ctx.stack.Push(NewBoolean(false))
				return nil
			}
		}
	} else {
		h, err = UInt160FromBytes(buf)
		if err != nil {
			ctx.stack.Push(NewBoolean(false))
			return nil
		}
	}
	witnesses := ctx.init.ScriptContainer.WitnessHashes()
	_, ok := witnesses[h]
	ctx.stack.Push(NewBoolean(ok))
	return nil
}

func runtimeNotify(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	ctx.emitNotification(v.ToContractParameter())
	return nil
}

func runtimeLog(ctx *ExecutionContext) error {
	v, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	buf, err := v.AsBuffer()
	if err != nil {
		return err
	}
	ctx.emitLog(string(buf))
	return nil
}
