package main

import (
	"fmt"
	"log"

	core "synnergy-svm/core"
)

// opcode-lint fails the build pipeline if the opcode or syscall catalogue
// ever grows a duplicate byte value or name, which would otherwise silently
// shadow one instruction with another.
func main() {
	ops := core.Opcodes()
	seenOps := make(map[byte]struct{})
	seenNames := make(map[string]struct{})
	for _, info := range ops {
		if _, ok := seenOps[info.Byte]; ok {
			log.Fatalf("duplicate opcode byte 0x%02X", info.Byte)
		}
		seenOps[info.Byte] = struct{}{}
		if _, ok := seenNames[info.Name]; ok {
			log.Fatalf("duplicate opcode name %s", info.Name)
		}
		seenNames[info.Name] = struct{}{}
	}
	fmt.Printf("checked %d opcodes, no collisions detected\n", len(ops))

	calls := core.Syscalls()
	seenCalls := make(map[string]struct{})
	for _, sc := range calls {
		if _, ok := seenCalls[sc.Name]; ok {
			log.Fatalf("duplicate syscall name %s", sc.Name)
		}
		seenCalls[sc.Name] = struct{}{}
	}
	fmt.Printf("checked %d syscalls, no collisions detected\n", len(calls))
}
