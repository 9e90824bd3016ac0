package core

// Neo.Account.SetVotes (§4.4 "Account.SetVotes"). Grounded on the teacher's
// witness-then-mutate idiom (core/transactions.go's VerifySignature before
// any state-changing path).

func registerAccountSyscalls(t map[string]syscallDescriptor) {
	t["Neo.Account.SetVotes"] = syscallDescriptor{Invoke: accountSetVotes}
}

func accountSetVotes(ctx *ExecutionContext) error {
	votesItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	hashItem, err := ctx.stack.Pop()
	if err != nil {
		return err
	}
	hashBuf, err := hashItem.AsBuffer()
	if err != nil {
		return err
	}
	hash, err := UInt160FromBytes(hashBuf)
	if err != nil {
		return err
	}

	voteItems, err := votesItem.AsArray()
	if err != nil {
		return err
	}
	if len(voteItems) > MaxVotes {
		return ErrTooManyVotes
	}

	witnesses := ctx.init.ScriptContainer.WitnessHashes()
	if _, ok := witnesses[hash]; !ok {
		return ErrBadWitness
	}

	acc, err := ctx.blockchain.Accounts().Get(hash)
	if err != nil {
		return err
	}
	if acc.Frozen {
		return ErrAccountFrozen
	}

	if len(voteItems) > 0 {
		if governingBalance(ctx, acc) <= 0 {
			return ErrNotEligibleVote
		}
	}

	votes := make([]ECPoint, 0, len(voteItems))
	for _, item := range voteItems {
		buf, err := item.AsBuffer()
		if err != nil {
			return err
		}
		pk, err := ECPointFromBytes(buf)
		if err != nil {
			return err
		}
		votes = append(votes, pk)
	}
	acc.Votes = votes

	if accountDeletable(acc) {
		return ctx.blockchain.Accounts().Delete(hash)
	}
	return ctx.blockchain.Accounts().Update(hash, acc)
}

func governingBalance(ctx *ExecutionContext, acc *Account) Fixed8 {
	assets, err := allAssets(ctx)
	if err != nil {
		return 0
	}
	for _, a := range assets {
		if a.Type == AssetGoverningToken {
			return acc.Balances[a.AssetID]
		}
	}
	return 0
}

// allAssets adapts the write-capable Assets() facade to a bulk read; the
// in-memory implementation also satisfies ReadWriteAllStorage, so this type
// assertion succeeds for every Blockchain this engine is built against.
func allAssets(ctx *ExecutionContext) ([]*Asset, error) {
	if all, ok := ctx.blockchain.Assets().(interface{ All() ([]*Asset, error) }); ok {
		return all.All()
	}
	return nil, nil
}

func accountDeletable(acc *Account) bool {
	if acc.Frozen || len(acc.Votes) > 0 {
		return false
	}
	for _, bal := range acc.Balances {
		if bal > 0 {
			return false
		}
	}
	return true
}
