package core

// TriggerType selects which effects a script invocation may perform (§3).
type TriggerType uint8

const (
	// TriggerVerification runs read-only: used to check a witness/signature.
	TriggerVerification TriggerType = iota
	// TriggerApplication may mutate ledger state.
	TriggerApplication
)

func (t TriggerType) String() string {
	if t == TriggerApplication {
		return "Application"
	}
	return "Verification"
}

// ContainerKind discriminates the ScriptContainer sum type (§3).
type ContainerKind uint8

const (
	ContainerTransaction ContainerKind = iota
	ContainerBlock
)

// ScriptContainer is the transaction or block whose execution triggered the
// VM (GLOSSARY). It supplies the witness-hash set used by CheckWitness and
// the canonical signed "message" used by CHECKSIG/CHECKMULTISIG.
type ScriptContainer struct {
	Kind        ContainerKind
	Transaction *Transaction
	Block       *Block
}

// Message returns the canonical pre-witness serialization that CHECKSIG and
// CHECKMULTISIG verify signatures against (§4.3, §9 "Signature verification
// message"). It is supplied by the concrete container and must be
// deterministic; this VM treats it as an opaque byte string produced
// upstream by the wire codec (out of scope, §1).
func (c ScriptContainer) Message() []byte {
	switch c.Kind {
	case ContainerTransaction:
		if c.Transaction != nil {
			return c.Transaction.SignedMessage
		}
	case ContainerBlock:
		if c.Block != nil {
			return c.Block.SignedMessage
		}
	}
	return nil
}

// WitnessHashes returns the set of script hashes authenticated by this
// container's witnesses, consulted by Runtime.CheckWitness (§4.4).
func (c ScriptContainer) WitnessHashes() map[UInt160]struct{} {
	switch c.Kind {
	case ContainerTransaction:
		if c.Transaction != nil {
			return c.Transaction.WitnessHashes
		}
	case ContainerBlock:
		if c.Block != nil {
			return c.Block.WitnessHashes
		}
	}
	return nil
}

// Hash returns the container's own identifying hash, used by syscalls that
// need "the current transaction/block" (e.g. Asset.Create's tx hash).
func (c ScriptContainer) Hash() (UInt256, error) {
	switch c.Kind {
	case ContainerTransaction:
		if c.Transaction != nil {
			return c.Transaction.Hash, nil
		}
	case ContainerBlock:
		if c.Block != nil {
			return c.Block.Hash(), nil
		}
	}
	return UInt256Zero, ErrInvalidScriptContainer
}

// InitBundle carries the invocation-invariant inputs to executeScript (§3):
// the script container, trigger type, and a template used to stamp emitted
// actions with (block index/hash, tx index/hash).
type InitBundle struct {
	ScriptContainer ScriptContainer
	Trigger         TriggerType
	ActionTemplate  ActionTemplate
}

// ActionTemplate supplies the (blockIndex, blockHash, transactionIndex,
// transactionHash) coordinates stamped onto every emitted action (§6).
type ActionTemplate struct {
	BlockIndex       uint32
	BlockHash        UInt256
	TransactionIndex uint32
	TransactionHash  UInt256
}
