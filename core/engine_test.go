package core

import "testing"

func newTestEngine() *Engine {
	return NewEngine(NewInMemoryBlockchain())
}

func testInit() InitBundle {
	return InitBundle{
		ScriptContainer: ScriptContainer{
			Kind:        ContainerTransaction,
			Transaction: &Transaction{Type: TxInvocation},
		},
		Trigger: TriggerApplication,
	}
}

func TestExecuteScriptAddHalts(t *testing.T) {
	// PUSH1 PUSH2 ADD RET
	code := []byte{byte(OpPush1), byte(OpPush1+1), byte(OpAdd), byte(OpRet)}
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), false)
	if result.State != StateHalt {
		t.Fatalf("expected HALT, got %s (%v)", result.State, result.FaultErr)
	}
	if len(result.Stack) != 1 {
		t.Fatalf("expected 1 item on stack, got %d", len(result.Stack))
	}
	v, err := result.Stack[0].AsBigInteger()
	if err != nil || v.Int64() != 3 {
		t.Fatalf("expected 3, got %v (%v)", v, err)
	}
}

func TestExecuteScriptDivByZeroFaults(t *testing.T) {
	// PUSH1 PUSH0 DIV RET
	code := []byte{byte(OpPush1), byte(OpPush0), byte(OpDiv), byte(OpRet)}
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), false)
	if result.State != StateFault {
		t.Fatalf("expected FAULT, got %s", result.State)
	}
	if result.FaultErr == nil {
		t.Fatalf("expected a fault error")
	}
}

func TestExecuteScriptOutOfGasFaults(t *testing.T) {
	code := []byte{byte(OpPush1), byte(OpPush1+1), byte(OpAdd), byte(OpRet)}
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, Fixed8(0), false)
	if result.State != StateFault {
		t.Fatalf("expected FAULT on zero gas budget, got %s", result.State)
	}
}

func TestExecuteScriptPushOnlyRejectsNonPushOpcode(t *testing.T) {
	// PUSH1 PUSH2 ADD RET, but restricted to push-only.
	code := []byte{byte(OpPush1), byte(OpPush1+1), byte(OpAdd), byte(OpRet)}
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), true)
	if result.State != StateFault {
		t.Fatalf("expected FAULT for non-push opcode under pushOnly, got %s", result.State)
	}
}

func TestExecuteScriptRetOnlyIsValidPushOnlyScript(t *testing.T) {
	code := []byte{byte(OpPush1), byte(OpRet)}
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), true)
	if result.State != StateHalt {
		t.Fatalf("expected HALT, got %s (%v)", result.State, result.FaultErr)
	}
}

func TestExecuteScriptCallSubroutineReturns(t *testing.T) {
	// main: CALL +4 -> lands on the subroutine's first PUSH1, then RET; subroutine: PUSH1 PUSH1 ADD RET
	// Layout: [0]=CALL [1..2]=offset [3]=RET(main tail, unreachable) [4]=PUSH1 [5]=PUSH1 [6]=ADD [7]=RET
	code := make([]byte, 8)
	code[0] = byte(OpCall)
	offset := int16(4 - 0) // target = pc(after call+2bytes=3) + offset - 3 = 4
	code[1] = byte(uint16(offset))
	code[2] = byte(uint16(offset) >> 8)
	code[3] = byte(OpRet)
	code[4] = byte(OpPush1)
	code[5] = byte(OpPush1)
	code[6] = byte(OpAdd)
	code[7] = byte(OpRet)

	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), false)
	if result.State != StateHalt {
		t.Fatalf("expected HALT, got %s (%v)", result.State, result.FaultErr)
	}
	if len(result.Stack) != 1 {
		t.Fatalf("expected 1 item on stack, got %d", len(result.Stack))
	}
	v, _ := result.Stack[0].AsBigInteger()
	if v.Int64() != 2 {
		t.Fatalf("expected 2 from subroutine, got %s", v.String())
	}
}

func TestExecuteScriptAppCallMissingContractFaults(t *testing.T) {
	// APPCALL + 20 zero bytes (no contract registered at that hash) + RET
	code := make([]byte, 22)
	code[0] = byte(OpAppCall)
	code[21] = byte(OpRet)
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), false)
	if result.State != StateFault {
		t.Fatalf("expected FAULT for missing contract, got %s", result.State)
	}
}

func TestExecuteScriptUnknownSyscallFaults(t *testing.T) {
	name := "Neo.NotReal"
	code := []byte{byte(OpSysCall), byte(len(name))}
	code = append(code, []byte(name)...)
	code = append(code, byte(OpRet))
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), false)
	if result.State != StateFault {
		t.Fatalf("expected FAULT for unknown syscall, got %s", result.State)
	}
}

func TestExecuteScriptOversizeScriptFaultsBeforeRunning(t *testing.T) {
	code := make([]byte, MaxScriptLength+1)
	e := newTestEngine()
	result := e.ExecuteScript(testInit(), code, UInt160{}, NewFixed8(10), false)
	if result.State != StateFault || result.FaultErr != ErrScriptTooLarge {
		t.Fatalf("expected ErrScriptTooLarge, got %v", result.FaultErr)
	}
}
