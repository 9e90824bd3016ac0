package core

import "github.com/sirupsen/logrus"

// Resource limits (§4.6, §6 GLOSSARY). Compatibility-critical: scripts that
// halted under these limits on one implementation must halt under them on
// every implementation.
const (
	MaxStackSize           = 2048
	MaxInvocationStackSize = 1024
	MaxArraySize           = 1024
	MaxItemSize            = 1 << 20 // 1 MiB
	MaxScriptLength        = 1 << 20 // 1 MiB
	MaxVotes               = 1024
	BlockHeightYear        = 2_000_000
	MaxAssetNameLength     = 1024
)

var gasLog = logrus.WithField("component", "gas")

// gasTable maps every priced opcode to its base fee in Fixed8 units.
// Grounded on the teacher's core/gas_table.go: a map[Opcode]cost table plus
// a punitive DefaultGasCost for anything missing, logged once. Most opcodes
// are cheap stack/arithmetic operations; hashing and signature checks cost
// more, matching classic NeoVM's free-stack-ops/priced-crypto split.
var gasTable = map[Opcode]Fixed8{
	OpSha1:          Fixed8(1000),
	OpSha256:        Fixed8(1000),
	OpHash160:       Fixed8(1000),
	OpHash256:       Fixed8(1000),
	OpCheckSig:      Fixed8(100000),
	OpCheckMultisig: Fixed8(100000), // flat fee, independent of the number of keys
	OpAppCall:       Fixed8(0),
	OpTailCall:      Fixed8(0),
	OpSysCall:       Fixed8(0), // syscalls carry their own descriptor fee
	OpNewArray:      Fixed8(1),
	OpNewStruct:     Fixed8(1),
	OpPack:          Fixed8(1),
	OpUnpack:        Fixed8(1),
}

// DefaultOpcodeFee is charged for any opcode absent from gasTable: every
// ordinary stack, arithmetic and control-flow opcode (§4.6 "each descriptor
// carries a fee").
const DefaultOpcodeFee = Fixed8(1)

var loggedMissingGas = map[Opcode]bool{}

// OpcodeGasCost returns the base fee for op.
func OpcodeGasCost(op Opcode) Fixed8 {
	if fee, ok := gasTable[op]; ok {
		return fee
	}
	if !loggedMissingGas[op] {
		loggedMissingGas[op] = true
		gasLog.WithField("opcode", op.String()).Debug("no explicit gas cost, charging default")
	}
	return DefaultOpcodeFee
}

// GasMeter tracks remaining gas for one invocation tree and enforces the
// underflow fault (§4.6 "gasLeft < fee ⇒ OutOfGas"). Grounded on the
// teacher's GasMeter/Consume idiom (core/virtual_machine.go).
type GasMeter struct {
	remaining Fixed8
}

// NewGasMeter starts a meter with the given initial allowance.
func NewGasMeter(initial Fixed8) *GasMeter {
	return &GasMeter{remaining: initial}
}

// Remaining returns the gas left.
func (g *GasMeter) Remaining() Fixed8 { return g.remaining }

// Consume subtracts fee, returning ErrOutOfGas without mutating state if the
// meter would go negative (§4.6, §7 "Resource faults").
func (g *GasMeter) Consume(fee Fixed8) error {
	if fee > g.remaining {
		return ErrOutOfGas
	}
	g.remaining -= fee
	return nil
}
