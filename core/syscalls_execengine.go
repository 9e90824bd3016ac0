package core

// Neo.ExecutionEngine.* (§4.4).

func registerExecutionEngineSyscalls(t map[string]syscallDescriptor) {
	t["Neo.ExecutionEngine.GetScriptContainer"] = syscallDescriptor{Invoke: execEngineGetScriptContainer}
	t["Neo.ExecutionEngine.GetExecutingScriptHash"] = syscallDescriptor{Invoke: execEngineGetExecutingScriptHash}
	t["Neo.ExecutionEngine.GetCallingScriptHash"] = syscallDescriptor{Invoke: execEngineGetCallingScriptHash}
	t["Neo.ExecutionEngine.GetEntryScriptHash"] = syscallDescriptor{Invoke: execEngineGetEntryScriptHash}
}

func execEngineGetScriptContainer(ctx *ExecutionContext) error {
	sc := ctx.init.ScriptContainer
	switch sc.Kind {
	case ContainerTransaction:
		ctx.stack.Push(NewObject(ObjTransaction, sc.Transaction))
	case ContainerBlock:
		ctx.stack.Push(NewObject(ObjBlock, sc.Block))
	default:
		return ErrInvalidScriptContainer
	}
	return nil
}

func execEngineGetExecutingScriptHash(ctx *ExecutionContext) error {
	ctx.stack.Push(NewObject(ObjUInt160, ctx.scriptHash))
	return nil
}

func execEngineGetCallingScriptHash(ctx *ExecutionContext) error {
	if ctx.callingScriptHash == nil {
		ctx.stack.Push(NewObject(ObjUInt160, UInt160Zero))
		return nil
	}
	ctx.stack.Push(NewObject(ObjUInt160, *ctx.callingScriptHash))
	return nil
}

func execEngineGetEntryScriptHash(ctx *ExecutionContext) error {
	ctx.stack.Push(NewObject(ObjUInt160, ctx.entryScriptHash))
	return nil
}
