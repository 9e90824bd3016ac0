package core

import "github.com/google/uuid"

// ActionKind discriminates the two emitted-action shapes (§6 "Emitted
// actions. Tagged {Log | Notification}").
type ActionKind uint8

const (
	ActionLog ActionKind = iota
	ActionNotification
)

// Action is a single observable side effect appended during an invocation
// tree, ordered by (blockIndex, transactionIndex, index) (§6 GLOSSARY
// "Action"). RunID tags every action with the invocation-tree run that
// produced it, so a host embedding multiple concurrent runs (e.g. the debug
// daemon) can demultiplex an action stream without inspecting block/tx
// coordinates.
type Action struct {
	RunID            string
	Kind             ActionKind
	BlockIndex       uint32
	BlockHash        UInt256
	TransactionIndex uint32
	TransactionHash  UInt256
	Index            uint32
	ScriptHash       UInt160
	Message          string              // ActionLog payload
	Payload          *ContractParameter  // ActionNotification payload
}

// newRunID mints an opaque identifier for one executeScript invocation tree.
// Grounded on the teacher's request/session-ID idiom (cmd/svmd handlers tag
// each run for client-visible correlation); uuid is already a pack
// dependency used for consensus/transaction identifiers elsewhere.
func newRunID() string { return uuid.NewString() }

// actionLog accumulates Action values in emission order and hands out
// strictly increasing indices (§8 invariant 9 "Action index monotonicity").
type actionLog struct {
	runID string
	items []Action
}

func newActionLog() *actionLog {
	return &actionLog{runID: newRunID()}
}

func (a *actionLog) append(kind ActionKind, index uint32, tmpl ActionTemplate, scriptHash UInt160, message string, payload *ContractParameter) {
	a.items = append(a.items, Action{
		RunID:            a.runID,
		Kind:             kind,
		BlockIndex:       tmpl.BlockIndex,
		BlockHash:        tmpl.BlockHash,
		TransactionIndex: tmpl.TransactionIndex,
		TransactionHash:  tmpl.TransactionHash,
		Index:            index,
		ScriptHash:       scriptHash,
		Message:          message,
		Payload:          payload,
	})
}

// Actions returns the accumulated action list in emission order.
func (a *actionLog) Actions() []Action { return append([]Action(nil), a.items...) }
