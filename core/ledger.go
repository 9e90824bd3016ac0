package core

import "encoding/hex"

// This file declares the §4.7/§6 Blockchain read/write facade the VM
// consumes. It is an external collaborator (§1 "out of scope"): on-disk
// layout, wire codecs and networking are someone else's problem; the VM
// only ever calls through these interfaces. Grounded on the teacher's
// generic read/write collection split (core/ledger.go's typed maps), recast
// as the typed-collection generics the design notes (§9) ask for.

// ReadStorage is the minimal read capability over a K -> V collection.
type ReadStorage[K comparable, V any] interface {
	Get(K) (V, error)
	TryGet(K) (V, bool, error)
}

// ReadAllStorage adds a bulk read over every value in the collection.
type ReadAllStorage[K comparable, V any] interface {
	ReadStorage[K, V]
	All() ([]V, error)
}

// ReadGetAllStorage adds a predicate-scoped bulk read (e.g. "every storage
// item belonging to contract C").
type ReadGetAllStorage[K comparable, P any, V any] interface {
	ReadStorage[K, V]
	GetAll(P) ([]V, error)
}

// ReadWriteStorage adds mutation; only permitted for Trigger == Application.
type ReadWriteStorage[K comparable, V any] interface {
	ReadStorage[K, V]
	Add(K, V) error
	Update(K, V) error
	Delete(K) error
}

// ReadWriteAllStorage is the write-capable counterpart of ReadAllStorage.
type ReadWriteAllStorage[K comparable, V any] interface {
	ReadWriteStorage[K, V]
	All() ([]V, error)
}

// ReadWriteGetAllStorage is the write-capable counterpart of
// ReadGetAllStorage, used for per-contract storage items.
type ReadWriteGetAllStorage[K comparable, P any, V any] interface {
	ReadWriteStorage[K, V]
	GetAll(P) ([]V, error)
}

// OutputKey identifies a transaction output by (txHash, index) — the
// facade's key shape for the Outputs collection (§4.7).
type OutputKey struct {
	TxHash UInt256
	Index  uint16
}

// ECPointKey is the map-friendly, comparable form of an ECPoint, used as the
// Validators collection key (§4.7 "validator by ECPoint").
type ECPointKey string

// KeyOf returns the comparable key for an ECPoint.
func KeyOf(p ECPoint) ECPointKey { return ECPointKey(hex.EncodeToString(p.Bytes())) }

// StorageKey identifies a single storage item by owning contract and raw
// key bytes (§4.7 "storageItem by (UInt160, bytes)").
type StorageKey struct {
	Contract UInt160
	Key      string
}

// Blockchain is the full read/write facade the VM's syscall catalogue (C4)
// is built against (§4.7, §6). Trigger == Verification callers must only
// invoke the read-only methods; enforcing that is the facade
// implementation's responsibility (§3 "Trigger type").
type Blockchain interface {
	Height() uint32

	Headers() ReadAllStorage[UInt256, *Header]
	HeaderByIndex(index uint32) (*Header, error)

	Blocks() ReadAllStorage[UInt256, *Block]
	BlockByIndex(index uint32) (*Block, error)

	Transactions() ReadStorage[UInt256, *Transaction]
	Outputs() ReadStorage[OutputKey, *Output]

	Accounts() ReadWriteStorage[UInt160, *Account]
	Assets() ReadWriteStorage[UInt256, *Asset]
	Contracts() ReadWriteStorage[UInt160, *Contract]
	Validators() ReadWriteAllStorage[ECPointKey, *Validator]

	Storage() ReadWriteGetAllStorage[StorageKey, UInt160, *StorageItem]
}

//----------------------------------------------------------------------
// Ledger entity types (§3, §4.4, §4.7)
//----------------------------------------------------------------------

// Header is a block header (§6: "wire encodings consumed but not defined
// here"); fields are the subset the VM's Header.* syscalls expose.
type Header struct {
	HeaderHash    UInt256
	PrevHash      UInt256
	MerkleRoot    UInt256
	Timestamp     uint32
	Index         uint32
	NextConsensus UInt160
}

// Hash returns the header's own hash.
func (h *Header) Hash() UInt256 { return h.HeaderHash }

// Block is a full block: header plus transaction list (§3).
type Block struct {
	Header
	Transactions  []*Transaction
	SignedMessage []byte
	WitnessHashes map[UInt160]struct{}
}

// Hash returns the block's header hash.
func (b *Block) Hash() UInt256 { return b.HeaderHash }

// TransactionType enumerates the legacy NEO transaction kinds; only
// InvocationTransaction is distinguished by VM semantics (Asset.Create).
type TransactionType byte

const (
	TxMiner TransactionType = iota
	TxIssue
	TxClaim
	TxEnrollment
	TxRegister
	TxContract
	TxState
	TxPublish
	TxInvocation
)

// Input references a previous transaction's output by (hash, index).
type Input struct {
	PrevHash  UInt256
	PrevIndex uint16
}

// Output is a transaction output: an amount of an asset payable to a
// script hash.
type Output struct {
	AssetID    UInt256
	Value      Fixed8
	ScriptHash UInt160
}

// AttributeUsage enumerates the legacy attribute usage byte; only the raw
// value matters to Attribute.GetUsage/GetData (§4.4).
type AttributeUsage byte

// Attribute is an opaque (usage, data) pair attached to a transaction.
type Attribute struct {
	Usage AttributeUsage
	Data  []byte
}

// Transaction is the common shape of every NEO transaction kind (§3, §4.4).
type Transaction struct {
	Hash          UInt256
	Type          TransactionType
	Attributes    []*Attribute
	Inputs        []*Input
	Outputs       []*Output
	References    map[int]*Output // per-Input, the Output it spends
	SignedMessage []byte
	WitnessHashes map[UInt160]struct{}
}

// Account holds balances, votes and freeze/delete status for a script hash
// (§4.4 "Account.SetVotes").
type Account struct {
	ScriptHash UInt160
	Votes      []ECPoint
	Balances   map[UInt256]Fixed8
	Frozen     bool
}

// AssetType enumerates the NEO asset kinds (§4.4 "Asset.Create").
type AssetType byte

const (
	AssetCreditFlag AssetType = iota
	AssetDutyFlag
	AssetGoverningToken
	AssetUtilityToken
	AssetShare
	AssetInvoice
	AssetToken
)

// Asset is a first-class NEO asset (the governing/utility tokens plus any
// user-created asset via Asset.Create) (§4.4).
type Asset struct {
	AssetID    UInt256
	Type       AssetType
	Name       string
	Amount     Fixed8
	Available  Fixed8
	Precision  byte
	Owner      ECPoint
	Admin      UInt160
	Issuer     UInt160
	Expiration uint32
}

// Contract is a deployed smart contract (§4.4 "Contract.Create/Migrate").
type Contract struct {
	Hash          UInt160
	Script        []byte
	ParameterList []byte
	ReturnType    byte
	HasStorage    bool
	Name          string
	Version       string
	Author        string
	Email         string
	Description   string
}

// Validator is a registered consensus-validator public key (§4.4
// "Validator.Register").
type Validator struct {
	PublicKey  ECPoint
	Registered bool
	Votes      Fixed8
}

// StorageItem is the value half of the per-contract key/value store (§4.4
// "Storage.Get/Put/Delete").
type StorageItem struct {
	Value []byte
}
