package core

import (
	"math/big"
)

// step executes the non-control-transfer opcode at ctx.pc: arithmetic,
// stack shuffling, bytes, bitwise, hashing, and collection opcodes. Control
// transfer (JMP family, CALL/APPCALL/TAILCALL/SYSCALL, RET) is handled by
// the engine's run loop, since only it can recurse. Grounded on the
// teacher's LightVM.Execute switch (core/virtual_machine.go): decode,
// pop operands through small typed helpers, push results, advance pc.
//
// Returns an error wrapping one of the §7 fault sentinels on failure.
func (ctx *ExecutionContext) step(op Opcode) error {
	switch {
	case op == OpPush0:
		ctx.stack.Push(NewBuffer(nil))
		return nil
	case op >= OpPushBytes1 && op <= OpPushBytes75:
		n := int(op-OpPushBytes1) + 1
		data, err := ctx.readBytes(n)
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBuffer(data))
		return nil
	case op == OpPushData1:
		return ctx.pushData(1)
	case op == OpPushData2:
		return ctx.pushData(2)
	case op == OpPushData4:
		return ctx.pushData(4)
	case op == OpPushM1:
		ctx.stack.Push(NewIntegerInt64(-1))
		return nil
	case op >= OpPush1 && op <= OpPush16:
		ctx.stack.Push(NewIntegerInt64(int64(op-OpPush1) + 1))
		return nil
	}

	switch op {
	case OpNop:
		return nil

	case OpToAltStack:
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		ctx.stackAlt.Push(v)
		return nil
	case OpFromAltStack:
		v, err := ctx.stackAlt.Pop()
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpDupFromAltStack:
		v, err := ctx.stackAlt.Peek(0)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil

	case OpXDrop:
		n, err := ctx.popNonNegIndex(ErrXDropNegative)
		if err != nil {
			return err
		}
		_, err = ctx.stack.Remove(n)
		return err
	case OpXSwap:
		n, err := ctx.popNonNegIndex(ErrXSwapNegative)
		if err != nil {
			return err
		}
		top, err := ctx.stack.Peek(0)
		if err != nil {
			return err
		}
		other, err := ctx.stack.Peek(n)
		if err != nil {
			return err
		}
		items := ctx.stack.items
		items[len(items)-1-n] = top
		items[len(items)-1] = other
		return nil
	case OpXTuck:
		n, err := ctx.popNonNegIndex(ErrXTuckNegative)
		if err != nil {
			return err
		}
		top, err := ctx.stack.Peek(0)
		if err != nil {
			return err
		}
		return ctx.stack.Insert(n, top)
	case OpDepth:
		ctx.stack.Push(NewIntegerInt64(int64(ctx.stack.Len())))
		return nil
	case OpDrop:
		_, err := ctx.stack.Pop()
		return err
	case OpDup:
		v, err := ctx.stack.Peek(0)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpNip:
		_, err := ctx.stack.Remove(1)
		return err
	case OpOver:
		v, err := ctx.stack.Peek(1)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpPick:
		n, err := ctx.popNonNegIndex(ErrPickNegative)
		if err != nil {
			return err
		}
		v, err := ctx.stack.Peek(n)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpRoll:
		n, err := ctx.popNonNegIndex(ErrRollNegative)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		v, err := ctx.stack.Remove(n)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpRot:
		v, err := ctx.stack.Remove(2)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpSwap:
		v, err := ctx.stack.Remove(1)
		if err != nil {
			return err
		}
		ctx.stack.Push(v)
		return nil
	case OpTuck:
		v, err := ctx.stack.Peek(0)
		if err != nil {
			return err
		}
		return ctx.stack.Insert(2, v)

	case OpCat:
		b, a, err := ctx.popTwoBuffers()
		if err != nil {
			return err
		}
		out := append(append([]byte(nil), a...), b...)
		if len(out) > MaxItemSize {
			return ErrItemTooLarge
		}
		ctx.stack.Push(NewBuffer(out))
		return nil
	case OpSubstr:
		end, start, buf, err := ctx.popTwoIntsAndBuffer()
		if err != nil {
			return err
		}
		if start < 0 || end < 0 || start > end || int(end) > len(buf) {
			return ErrSubstrNegative
		}
		ctx.stack.Push(NewBuffer(buf[start:end]))
		return nil
	case OpLeft:
		count, buf, err := ctx.popIntAndBuffer()
		if err != nil {
			return err
		}
		if count < 0 {
			return ErrLeftNegative
		}
		if int(count) > len(buf) {
			return ErrInvalidIndex
		}
		ctx.stack.Push(NewBuffer(buf[:count]))
		return nil
	case OpRight:
		count, buf, err := ctx.popIntAndBuffer()
		if err != nil {
			return err
		}
		if count < 0 {
			return ErrRightNegative
		}
		if int(count) > len(buf) {
			return ErrRightLength
		}
		ctx.stack.Push(NewBuffer(buf[len(buf)-int(count):]))
		return nil
	case OpSize:
		buf, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewIntegerInt64(int64(len(buf))))
		return nil

	case OpInvert:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Not(v)))
		return nil
	case OpAnd:
		return ctx.binaryIntOp(func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
	case OpOr:
		return ctx.binaryIntOp(func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
	case OpXor:
		return ctx.binaryIntOp(func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
	case OpEqual:
		b, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		a, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBoolean(ItemsEqual(a, b)))
		return nil

	case OpInc:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Add(v, big.NewInt(1))))
		return nil
	case OpDec:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Sub(v, big.NewInt(1))))
		return nil
	case OpSign:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewIntegerInt64(int64(v.Sign())))
		return nil
	case OpNegate:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Neg(v)))
		return nil
	case OpAbs:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Abs(v)))
		return nil
	case OpNot:
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBoolean(!v.AsBool()))
		return nil
	case OpNz:
		v, err := ctx.popInt()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBoolean(v.Sign() != 0))
		return nil

	case OpAdd:
		return ctx.binaryIntOp(func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
	case OpSub:
		return ctx.binaryIntOp(func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
	case OpMul:
		return ctx.binaryIntOp(func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
	case OpDiv:
		return ctx.binaryIntOpFallible(func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, ErrInvalidType
			}
			return new(big.Int).Quo(a, b), nil
		})
	case OpMod:
		return ctx.binaryIntOpFallible(func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, ErrInvalidType
			}
			return new(big.Int).Rem(a, b), nil
		})
	case OpShl:
		n, v, err := ctx.popIntAndShift()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Lsh(v, uint(n))))
		return nil
	case OpShr:
		n, v, err := ctx.popIntAndShift()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewInteger(new(big.Int).Rsh(v, uint(n))))
		return nil
	case OpBoolAnd:
		b, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		a, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBoolean(a.AsBool() && b.AsBool()))
		return nil
	case OpBoolOr:
		b, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		a, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBoolean(a.AsBool() || b.AsBool()))
		return nil
	case OpNumEqual:
		return ctx.compareIntOp(func(c int) bool { return c == 0 })
	case OpNumNotEqual:
		return ctx.compareIntOp(func(c int) bool { return c != 0 })
	case OpLt:
		return ctx.compareIntOp(func(c int) bool { return c < 0 })
	case OpGt:
		return ctx.compareIntOp(func(c int) bool { return c > 0 })
	case OpLte:
		return ctx.compareIntOp(func(c int) bool { return c <= 0 })
	case OpGte:
		return ctx.compareIntOp(func(c int) bool { return c >= 0 })
	case OpMin:
		b, a, err := ctx.popTwoInts()
		if err != nil {
			return err
		}
		if a.Cmp(b) < 0 {
			ctx.stack.Push(NewInteger(a))
		} else {
			ctx.stack.Push(NewInteger(b))
		}
		return nil
	case OpMax:
		b, a, err := ctx.popTwoInts()
		if err != nil {
			return err
		}
		if a.Cmp(b) > 0 {
			ctx.stack.Push(NewInteger(a))
		} else {
			ctx.stack.Push(NewInteger(b))
		}
		return nil
	case OpWithin:
		max, min, v, err := ctx.popThreeInts()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBoolean(v.Cmp(min) >= 0 && v.Cmp(max) < 0))
		return nil

	case OpSha1:
		buf, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBuffer(Sha1Sum(buf)))
		return nil
	case OpSha256:
		buf, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBuffer(Sha256Sum(buf)))
		return nil
	case OpHash160:
		buf, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBuffer(hash160Bytes(buf)))
		return nil
	case OpHash256:
		buf, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewBuffer(Hash256(buf)))
		return nil
	case OpCheckSig:
		sig, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		pkBuf, err := ctx.popBuffer()
		if err != nil {
			return err
		}
		pk, err := ECPointFromBytes(pkBuf)
		if err != nil {
			ctx.stack.Push(NewBoolean(false))
			return nil
		}
		ctx.stack.Push(NewBoolean(checkSig(pk, sig, ctx.init.ScriptContainer.Message())))
		return nil
	case OpCheckMultisig:
		return ctx.execCheckMultisig()

	case OpArraySize:
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		if v.Kind() == KindBuffer {
			b, _ := v.AsBuffer()
			ctx.stack.Push(NewIntegerInt64(int64(len(b))))
			return nil
		}
		items, err := v.AsArray()
		if err != nil {
			return err
		}
		ctx.stack.Push(NewIntegerInt64(int64(len(items))))
		return nil
	case OpPack:
		n, err := ctx.popNonNegIndex(ErrInvalidPackCount)
		if err != nil {
			return err
		}
		items := make([]StackItem, n)
		for i := 0; i < n; i++ {
			v, err := ctx.stack.Pop()
			if err != nil {
				return err
			}
			items[i] = v
		}
		ctx.stack.Push(NewArray(items))
		return nil
	case OpUnpack:
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		items, err := v.AsArray()
		if err != nil {
			return err
		}
		for i := len(items) - 1; i >= 0; i-- {
			ctx.stack.Push(items[i])
		}
		ctx.stack.Push(NewIntegerInt64(int64(len(items))))
		return nil
	case OpPickItem:
		idxItem, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		coll, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		items, err := coll.AsArray()
		if err != nil {
			return ErrInvalidPickItem
		}
		idx, err := ToInt64(idxItem)
		if err != nil || idx < 0 || int(idx) >= len(items) {
			return ErrInvalidPickItem
		}
		ctx.stack.Push(items[idx])
		return nil
	case OpSetItem:
		value, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		idxItem, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		coll, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		idx, err := ToInt64(idxItem)
		if err != nil {
			return ErrInvalidSetItem
		}
		switch c := coll.(type) {
		case *arrayItem:
			if idx < 0 || int(idx) >= c.Len() {
				return ErrInvalidSetItem
			}
			c.Set(int(idx), CloneForAssign(value))
		case *structItem:
			if idx < 0 || int(idx) >= c.Len() {
				return ErrInvalidSetItem
			}
			c.Set(int(idx), CloneForAssign(value))
		default:
			return ErrInvalidSetItem
		}
		return nil
	case OpNewArray:
		n, err := ctx.popNonNegIndex(ErrInvalidIndex)
		if err != nil {
			return err
		}
		if n > MaxArraySize {
			return ErrArrayTooLarge
		}
		ctx.stack.Push(NewArrayOfSize(n))
		return nil
	case OpNewStruct:
		n, err := ctx.popNonNegIndex(ErrInvalidIndex)
		if err != nil {
			return err
		}
		if n > MaxArraySize {
			return ErrArrayTooLarge
		}
		ctx.stack.Push(NewStructOfSize(n))
		return nil

	case OpThrow:
		return ErrThrow
	case OpThrowIfNot:
		v, err := ctx.stack.Pop()
		if err != nil {
			return err
		}
		if !v.AsBool() {
			return ErrThrowIfNot
		}
		return nil
	}

	return ErrUnknownOp
}

func (ctx *ExecutionContext) readBytes(n int) ([]byte, error) {
	if ctx.pc+uint32(n) > uint32(len(ctx.code)) {
		return nil, ErrCodeOverflow
	}
	b := ctx.code[ctx.pc : ctx.pc+uint32(n)]
	ctx.pc += uint32(n)
	return b, nil
}

func (ctx *ExecutionContext) readUint(n int) (int, error) {
	b, err := ctx.readBytes(n)
	if err != nil {
		return 0, err
	}
	v := 0
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | int(b[i])
	}
	return v, nil
}

func (ctx *ExecutionContext) pushData(lenPrefixBytes int) error {
	n, err := ctx.readUint(lenPrefixBytes)
	if err != nil {
		return err
	}
	data, err := ctx.readBytes(n)
	if err != nil {
		return err
	}
	if len(data) > MaxItemSize {
		return ErrItemTooLarge
	}
	ctx.stack.Push(NewBuffer(data))
	return nil
}

func (ctx *ExecutionContext) popNonNegIndex(sentinel error) (int, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return 0, err
	}
	n, err := ToInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, sentinel
	}
	return int(n), nil
}

func (ctx *ExecutionContext) popBuffer() ([]byte, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return nil, err
	}
	return v.AsBuffer()
}

func (ctx *ExecutionContext) popTwoBuffers() ([]byte, []byte, error) {
	b, err := ctx.popBuffer()
	if err != nil {
		return nil, nil, err
	}
	a, err := ctx.popBuffer()
	if err != nil {
		return nil, nil, err
	}
	return b, a, nil
}

func (ctx *ExecutionContext) popInt() (*big.Int, error) {
	v, err := ctx.stack.Pop()
	if err != nil {
		return nil, err
	}
	return v.AsBigInteger()
}

func (ctx *ExecutionContext) popTwoInts() (*big.Int, *big.Int, error) {
	b, err := ctx.popInt()
	if err != nil {
		return nil, nil, err
	}
	a, err := ctx.popInt()
	if err != nil {
		return nil, nil, err
	}
	return b, a, nil
}

func (ctx *ExecutionContext) popThreeInts() (*big.Int, *big.Int, *big.Int, error) {
	max, err := ctx.popInt()
	if err != nil {
		return nil, nil, nil, err
	}
	min, err := ctx.popInt()
	if err != nil {
		return nil, nil, nil, err
	}
	v, err := ctx.popInt()
	if err != nil {
		return nil, nil, nil, err
	}
	return max, min, v, nil
}

func (ctx *ExecutionContext) popIntAndShift() (int64, *big.Int, error) {
	n, err := ctx.popInt()
	if err != nil {
		return 0, nil, err
	}
	v, err := ctx.popInt()
	if err != nil {
		return 0, nil, err
	}
	if !n.IsInt64() || n.Int64() < 0 || n.Int64() > MaxSize {
		return 0, nil, ErrInvalidType
	}
	return n.Int64(), v, nil
}

func (ctx *ExecutionContext) popIntAndBuffer() (int64, []byte, error) {
	n, err := ctx.popInt()
	if err != nil {
		return 0, nil, err
	}
	buf, err := ctx.popBuffer()
	if err != nil {
		return 0, nil, err
	}
	if !n.IsInt64() {
		return 0, nil, ErrInvalidType
	}
	return n.Int64(), buf, nil
}

func (ctx *ExecutionContext) popTwoIntsAndBuffer() (int64, int64, []byte, error) {
	end, err := ctx.popInt()
	if err != nil {
		return 0, 0, nil, err
	}
	start, err := ctx.popInt()
	if err != nil {
		return 0, 0, nil, err
	}
	buf, err := ctx.popBuffer()
	if err != nil {
		return 0, 0, nil, err
	}
	if !end.IsInt64() || !start.IsInt64() {
		return 0, 0, nil, ErrInvalidType
	}
	return end.Int64(), start.Int64(), buf, nil
}

func (ctx *ExecutionContext) binaryIntOp(fn func(a, b *big.Int) *big.Int) error {
	b, a, err := ctx.popTwoInts()
	if err != nil {
		return err
	}
	ctx.stack.Push(NewInteger(fn(a, b)))
	return nil
}

func (ctx *ExecutionContext) binaryIntOpFallible(fn func(a, b *big.Int) (*big.Int, error)) error {
	b, a, err := ctx.popTwoInts()
	if err != nil {
		return err
	}
	r, err := fn(a, b)
	if err != nil {
		return err
	}
	ctx.stack.Push(NewInteger(r))
	return nil
}

func (ctx *ExecutionContext) compareIntOp(fn func(cmp int) bool) error {
	b, a, err := ctx.popTwoInts()
	if err != nil {
		return err
	}
	ctx.stack.Push(NewBoolean(fn(a.Cmp(b))))
	return nil
}

// execCheckMultisig implements the dynamic-arity decode of §4.3: each group
// (keys, then signatures) arrives either as a single Array item or as a
// count followed by that many individual items.
func (ctx *ExecutionContext) execCheckMultisig() error {
	sigs, err := ctx.popGroup()
	if err != nil {
		return ErrInvalidCheckMultisig
	}
	pks, err := ctx.popGroup()
	if err != nil {
		return ErrInvalidCheckMultisig
	}
	pubkeys := make([]ECPoint, 0, len(pks))
	for _, item := range pks {
		b, err := item.AsBuffer()
		if err != nil {
			return ErrInvalidCheckMultisig
		}
		pk, err := ECPointFromBytes(b)
		if err != nil {
			return ErrInvalidCheckMultisig
		}
		pubkeys = append(pubkeys, pk)
	}
	sigBytes := make([][]byte, 0, len(sigs))
	for _, item := range sigs {
		b, err := item.AsBuffer()
		if err != nil {
			return ErrInvalidCheckMultisig
		}
		sigBytes = append(sigBytes, b)
	}
	ctx.stack.Push(NewBoolean(checkMultisig(pubkeys, sigBytes, ctx.init.ScriptContainer.Message())))
	return nil
}

// popGroup pops one CHECKMULTISIG argument group: either a single Array
// item, or a count followed by that many scalar items (popped in reverse
// push order, then re-reversed to restore source order).
func (ctx *ExecutionContext) popGroup() ([]StackItem, error) {
	top, err := ctx.stack.Peek(0)
	if err != nil {
		return nil, err
	}
	if top.Kind() == KindArray {
		v, _ := ctx.stack.Pop()
		items, _ := v.AsArray()
		return items, nil
	}
	n, err := ctx.popNonNegIndex(ErrInvalidCheckMultisig)
	if err != nil {
		return nil, err
	}
	items := make([]StackItem, n)
	for i := n - 1; i >= 0; i-- {
		v, err := ctx.stack.Pop()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}
