package core

import "encoding/hex"

// ExecutionContext is one invocation frame (C2, §4.2). Per-frame fields
// (pc, done, scriptHash, callingScriptHash, depth) are copied on
// APPCALL/CALL; the shared fields (stack, stackAlt, actionIndex via the
// shared actionLog, createdContracts) are carried by pointer/reference so
// writes in a nested frame are visible to the caller once control returns
// (§4.2 "share stack, stackAlt, actionIndex, createdContracts").
type ExecutionContext struct {
	blockchain Blockchain
	init       InitBundle
	gas        *GasMeter
	actions    *actionLog
	engine     *Engine

	code     []byte
	pushOnly bool
	pc       uint32
	done     bool

	scriptHash        UInt160
	callingScriptHash *UInt160
	entryScriptHash   UInt160
	depth             uint32

	stack    *Stack
	stackAlt *Stack

	// createdContracts maps a lowercase-hex contract UInt160 to the
	// scriptHash of the frame that created it via Contract.Create/Migrate,
	// so Contract.GetStorageContext can verify the caller is the actual
	// creator (§4.4 "createdContracts[contract.hash] == ctx.scriptHash"),
	// not merely that the contract was created somewhere in this tree.
	createdContracts map[string]UInt160
}

// newRootContext builds the outermost frame for a fresh executeScript call.
func newRootContext(bc Blockchain, init InitBundle, code []byte, pushOnly bool, scriptHash UInt160, gas *GasMeter) *ExecutionContext {
	return &ExecutionContext{
		blockchain:        bc,
		init:              init,
		gas:               gas,
		actions:           newActionLog(),
		code:              code,
		pushOnly:          pushOnly,
		scriptHash:        scriptHash,
		entryScriptHash:   scriptHash,
		stack:             NewStack(),
		stackAlt:          NewStack(),
		createdContracts: make(map[string]UInt160),
	}
}

// derive builds a nested frame for APPCALL/CALL/TAILCALL sharing this
// frame's stacks, gas meter, action log and created-contracts set.
// isAppCall increments depth and sets callingScriptHash to the caller's
// current script hash; APPCALL and CALL pass isAppCall=true (CALL opens a
// new frame at depth+1 over the same script), TAILCALL passes false to stay
// at the same depth.
func (c *ExecutionContext) derive(code []byte, newScriptHash UInt160, isAppCall bool) *ExecutionContext {
	depth := c.depth
	if isAppCall {
		depth++
	}
	calling := c.scriptHash
	return &ExecutionContext{
		blockchain:        c.blockchain,
		init:              c.init,
		gas:               c.gas,
		actions:           c.actions,
		engine:            c.engine,
		code:              code,
		pushOnly:          false,
		scriptHash:        newScriptHash,
		callingScriptHash: &calling,
		entryScriptHash:   c.entryScriptHash,
		depth:             depth,
		stack:             c.stack,
		stackAlt:          c.stackAlt,
		createdContracts:  c.createdContracts,
	}
}

// emitLog records a Log action at the next monotonically increasing action
// index for this invocation tree (emitNotification does the same for a
// Notification).
func (c *ExecutionContext) emitLog(message string) {
	idx := uint32(len(c.actions.items))
	c.actions.append(ActionLog, idx, c.init.ActionTemplate, c.scriptHash, message, nil)
}

func (c *ExecutionContext) emitNotification(payload ContractParameter) {
	idx := uint32(len(c.actions.items))
	c.actions.append(ActionNotification, idx, c.init.ActionTemplate, c.scriptHash, "", &payload)
}

func contractKey(h UInt160) string { return hex.EncodeToString(h[:]) }

// markCreated records h as created by this frame's scriptHash.
func (c *ExecutionContext) markCreated(h UInt160) {
	c.createdContracts[contractKey(h)] = c.scriptHash
}

// creatorOf returns the scriptHash that created h via Contract.Create or
// Contract.Migrate, and whether h was created at all in this invocation tree.
func (c *ExecutionContext) creatorOf(h UInt160) (UInt160, bool) {
	creator, ok := c.createdContracts[contractKey(h)]
	return creator, ok
}

// totalStackSize is the combined size check input for §4.3 invariant 5.
func (c *ExecutionContext) totalStackSize() int {
	return c.stack.Len() + c.stackAlt.Len()
}
