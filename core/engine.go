package core

import "github.com/sirupsen/logrus"

var engineLog = logrus.WithField("component", "engine")

// State is the terminal classification of one executeScript run (§6).
type State uint8

const (
	StateHalt State = iota
	StateFault
)

func (s State) String() string {
	if s == StateHalt {
		return "HALT"
	}
	return "FAULT"
}

// RunResult is what executeScript returns: the engine never surfaces a Go
// error to its caller for a scripted fault (§7 "any fault terminates the
// entire invocation tree... surfaced result is {state, stack, actions,
// gasConsumed}"); a non-nil FaultErr only accompanies StateFault.
type RunResult struct {
	State       State
	Stack       []StackItem
	Actions     []Action
	GasConsumed Fixed8
	FaultErr    error
}

// Engine owns the blockchain facade a script's syscalls operate against and
// drives the fetch-decode-dispatch loop (C3, C5). Grounded on the teacher's
// ExecutionManager/VM-selection indirection (core/virtual_machine.go,
// core/execution_management.go): one long-lived object wired to ledger
// state, invoked per script with fresh per-run accounting.
type Engine struct {
	blockchain Blockchain

	// Trace, if set, is called once per executed instruction (push
	// instructions included) with its address and opcode, before dispatch — the hook `svm step`
	// and `svmd`'s `/step` route print a line from (§3 "single-step debug
	// execution").
	Trace func(pc uint32, op Opcode)
}

// NewEngine wires an Engine to the given ledger facade.
func NewEngine(bc Blockchain) *Engine { return &Engine{blockchain: bc} }

// ExecuteScript runs code as the outermost frame of a new invocation tree
// (§3 "Engine.executeScript(code, init, gas, options)").
func (e *Engine) ExecuteScript(init InitBundle, code []byte, scriptHash UInt160, gas Fixed8, pushOnly bool) *RunResult {
	if len(code) > MaxScriptLength {
		return &RunResult{State: StateFault, FaultErr: ErrScriptTooLarge}
	}
	meter := NewGasMeter(gas)
	ctx := newRootContext(e.blockchain, init, code, pushOnly, scriptHash, meter)
	ctx.engine = e

	err := e.run(ctx)
	consumed := gas - meter.Remaining()
	if err != nil {
		engineLog.WithError(err).WithField("scriptHash", scriptHash.String()).Debug("script faulted")
		return &RunResult{State: StateFault, FaultErr: err, Actions: ctx.actions.Actions(), GasConsumed: consumed}
	}
	return &RunResult{
		State:       StateHalt,
		Stack:       append([]StackItem(nil), ctx.stack.PeekAll()...),
		Actions:     ctx.actions.Actions(),
		GasConsumed: consumed,
	}
}

// run drives one frame to completion (ctx.done, set by RET or by pc reaching
// the end of the code) or fault, recursing for
// CALL/APPCALL/TAILCALL. It never recovers — a faulted frame always
// propagates up so the whole invocation tree stops (§7 "no opcode-level
// catch").
func (e *Engine) run(ctx *ExecutionContext) error {
	for !ctx.done {
		if ctx.pc >= uint32(len(ctx.code)) {
			ctx.done = true
			break
		}
		addr := ctx.pc
		op := Opcode(ctx.code[ctx.pc])
		ctx.pc++

		if e.Trace != nil {
			e.Trace(addr, op)
		}

		if ctx.pushOnly && !isPushOnly(op) {
			return ErrPushOnly
		}

		if err := e.dispatch(ctx, op); err != nil {
			return err
		}

		if ctx.totalStackSize() > MaxStackSize {
			return ErrStackOverflow
		}
	}
	return nil
}

// dispatch handles the control-transfer opcodes (JMP/JMPIF/JMPIFNOT, CALL,
// APPCALL, TAILCALL, SYSCALL, RET) directly, since they need engine-level
// recursion or frame state, and delegates everything else to ctx.step.
func (e *Engine) dispatch(ctx *ExecutionContext, op Opcode) error {
	switch op {
	case OpJmp, OpJmpIf, OpJmpIfNot:
		return ctx.consumeThenJump(op)
	case OpCall:
		return e.execCall(ctx)
	case OpAppCall:
		return e.execAppCall(ctx, false)
	case OpTailCall:
		return e.execAppCall(ctx, true)
	case OpSysCall:
		return e.execSysCall(ctx)
	case OpRet:
		ctx.done = true
		return nil
	default:
		if err := ctx.gas.Consume(OpcodeGasCost(op)); err != nil {
			return err
		}
		return ctx.step(op)
	}
}

// consumeThenJump implements JMP/JMPIF/JMPIFNOT (§4.3 "target = pc +
// offset - 3"). pc already points past the opcode byte when the int16
// offset is read, hence the -3: the offset is measured from the opcode
// byte, and by the time it's consumed pc has advanced 2 past that byte.
func (ctx *ExecutionContext) consumeThenJump(op Opcode) error {
	if err := ctx.gas.Consume(OpcodeGasCost(op)); err != nil {
		return err
	}
	raw, err := ctx.readBytes(2)
	if err != nil {
		return err
	}
	offset := int16(uint16(raw[0]) | uint16(raw[1])<<8)
	shouldJump := true
	if op != OpJmp {
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		cond := v.AsBool()
		if op == OpJmpIfNot {
			cond = !cond
		}
		shouldJump = cond
	}
	if !shouldJump {
		return nil
	}
	target := int64(ctx.pc) + int64(offset) - 3
	if target < 0 || target > int64(len(ctx.code)) {
		return ErrCodeOverflow
	}
	ctx.pc = uint32(target)
	return nil
}

// execCall implements CALL: jump into a new frame at depth+1 that shares
// this frame's code but returns to pc+2 (§4.3 "CALL = JMP into a new frame
// at depth+1, returns to pc+2"). Simplified to an in-script subroutine call:
// the nested frame reuses ctx.code and scriptHash, since CALL never leaves
// the current script.
func (e *Engine) execCall(ctx *ExecutionContext) error {
	if err := ctx.gas.Consume(OpcodeGasCost(OpCall)); err != nil {
		return err
	}
	raw, err := ctx.readBytes(2)
	if err != nil {
		return err
	}
	offset := int16(uint16(raw[0]) | uint16(raw[1])<<8)
	returnPC := ctx.pc
	target := int64(ctx.pc) + int64(offset) - 3
	if target < 0 || target > int64(len(ctx.code)) {
		return ErrCodeOverflow
	}
	if ctx.depth+1 > MaxInvocationStackSize {
		return ErrInvocationStackOverflow
	}
	nested := ctx.derive(ctx.code, ctx.scriptHash, true)
	nested.pc = uint32(target)
	nested.callingScriptHash = ctx.callingScriptHash
	if err := e.run(nested); err != nil {
		return err
	}
	ctx.pc = returnPC
	return nil
}

// execAppCall loads the contract at the 20-byte hash immediate and runs its
// script as a nested engine invocation. TAILCALL replaces the current
// frame (same depth, no return); APPCALL adds a depth level and resumes the
// caller afterward (§4.3).
func (e *Engine) execAppCall(ctx *ExecutionContext, tail bool) error {
	op := OpAppCall
	if tail {
		op = OpTailCall
	}
	if err := ctx.gas.Consume(OpcodeGasCost(op)); err != nil {
		return err
	}
	hashBytes, err := ctx.readBytes(20)
	if err != nil {
		return err
	}
	target, err := UInt160FromBytes(hashBytes)
	if err != nil {
		return err
	}
	contract, err := ctx.blockchain.Contracts().Get(target)
	if err != nil {
		return err
	}

	depth := ctx.depth
	if !tail {
		depth++
	}
	if depth > MaxInvocationStackSize {
		return ErrInvocationStackOverflow
	}

	nested := ctx.derive(contract.Script, target, !tail)
	if err := e.run(nested); err != nil {
		return err
	}
	if tail {
		ctx.done = true
	}
	return nil
}

// execSysCall decodes the varstring syscall name (§4.3 "reads a varstring
// (<=252 bytes)") and invokes the resolved descriptor.
func (e *Engine) execSysCall(ctx *ExecutionContext) error {
	nameLenB, err := ctx.readBytes(1)
	if err != nil {
		return err
	}
	nameLen := int(nameLenB[0])
	if nameLen > 252 {
		return ErrUnknownSyscall
	}
	nameBytes, err := ctx.readBytes(nameLen)
	if err != nil {
		return err
	}
	desc, ok := resolveSyscall(string(nameBytes))
	if !ok {
		return ErrUnknownSyscall
	}
	if err := ctx.gas.Consume(desc.Fee); err != nil {
		return err
	}
	return desc.Invoke(ctx)
}
