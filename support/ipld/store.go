package ipld

import (
	"context"
	"fmt"

	block "github.com/ipfs/go-block-format"
	cid "github.com/ipfs/go-cid"
	ipldcbor "github.com/ipfs/go-ipld-cbor"

	"github.com/vestlock/vesting-actors/actors/util/adt"
)

// Creates a new, empty, unsynchronized IPLD store in memory.
// This store is appropriate for most kinds of testing.
func NewADTStore(ctx context.Context) adt.Store {
	return adt.WrapStore(ctx, ipldcbor.NewCborStore(NewBlockStoreInMemory()))
}

type BlockStoreInMemory struct {
	data map[cid.Cid]block.Block
}

func NewBlockStoreInMemory() *BlockStoreInMemory {
	return &BlockStoreInMemory{make(map[cid.Cid]block.Block)}
}

func (mb *BlockStoreInMemory) Get(c cid.Cid) (block.Block, error) {
	d, ok := mb.data[c]
	if ok {
		return d, nil
	}
	return nil, fmt.Errorf("not found")
}

func (mb *BlockStoreInMemory) Put(b block.Block) error {
	mb.data[b.Cid()] = b
	return nil
}

var _ ipldcbor.IpldBlockstore = (*BlockStoreInMemory)(nil)
