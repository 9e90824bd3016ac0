package core

import "sort"

// The syscall catalogue (C4, §4.4): named system calls resolved by name
// through an alias table then the primary table, each carrying the same
// {fee, invoke} shape as an opcode descriptor. Grounded on the teacher's
// switch-dispatch idiom (core/virtual_machine.go's LightVM.Execute) recast
// as a name-keyed table, since syscalls are resolved by a runtime string
// rather than a compile-time opcode byte.

type syscallFunc func(ctx *ExecutionContext) error

type syscallDescriptor struct {
	Fee    Fixed8
	Invoke syscallFunc
}

// syscallTable is the canonical Namespace.Method -> descriptor map, built
// once from the per-namespace registration functions in the sibling
// syscalls_*.go files.
var syscallTable = buildSyscallTable()

// syscallAliases canonicalizes legacy AntShares.* names to their Neo.*
// counterparts (§4.4 "legacy AntShares.* names canonicalize to Neo.*").
var syscallAliases = buildSyscallAliases()

func buildSyscallTable() map[string]syscallDescriptor {
	t := map[string]syscallDescriptor{}
	registerRuntimeSyscalls(t)
	registerBlockchainSyscalls(t)
	registerAccessorSyscalls(t)
	registerStorageSyscalls(t)
	registerAccountSyscalls(t)
	registerValidatorSyscalls(t)
	registerAssetSyscalls(t)
	registerContractSyscalls(t)
	registerExecutionEngineSyscalls(t)
	return t
}

func buildSyscallAliases() map[string]string {
	aliases := map[string]string{}
	for name := range syscallTable {
		if rest, ok := stripNeoPrefix(name); ok {
			aliases["AntShares."+rest] = name
		}
	}
	return aliases
}

func stripNeoPrefix(name string) (string, bool) {
	const prefix = "Neo."
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):], true
	}
	return "", false
}

// resolveSyscall looks up name through the alias table first, then the
// primary table (§4.4).
func resolveSyscall(name string) (syscallDescriptor, bool) {
	if canonical, ok := syscallAliases[name]; ok {
		name = canonical
	}
	d, ok := syscallTable[name]
	return d, ok
}

// SyscallEntry describes one catalogued syscall for external callers such
// as cmd/svm's "catalogue" subcommand.
type SyscallEntry struct {
	Name string
	Fee  Fixed8
}

// Syscalls returns the canonical syscall catalogue sorted by name.
func Syscalls() []SyscallEntry {
	out := make([]SyscallEntry, 0, len(syscallTable))
	for name, d := range syscallTable {
		out = append(out, SyscallEntry{Name: name, Fee: d.Fee})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// decodeHashOrIndex implements the shared Blockchain-reader argument
// decoder (§4.4 "accepts a 32-byte buffer (reversed -> UInt256) or up to 5
// bytes (little-endian integer)").
func decodeHashOrIndex(item StackItem) (hash UInt256, index uint32, isHash bool, err error) {
	buf, err := item.AsBuffer()
	if err != nil {
		return UInt256{}, 0, false, err
	}
	if len(buf) == 32 {
		be := make([]byte, 32)
		for i, b := range buf {
			be[31-i] = b
		}
		h, err := UInt256FromBytes(be)
		return h, 0, true, err
	}
	if len(buf) <= 5 {
		var v uint64
		for i := len(buf) - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
		return UInt256{}, uint32(v), false, nil
	}
	return UInt256{}, 0, false, ErrInvalidGetHeaderOrBlockArguments
}
