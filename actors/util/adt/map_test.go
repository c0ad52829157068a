package adt_test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cbg "github.com/whyrusleeping/cbor-gen"

	"github.com/vestlock/vesting-actors/actors/builtin"
	"github.com/vestlock/vesting-actors/actors/util/adt"
	"github.com/vestlock/vesting-actors/support/ipld"
	tutil "github.com/vestlock/vesting-actors/support/testing"
)

func TestMapPutGet(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	k1 := abiAddrKey(t, 101)
	v1 := cbg.CborInt(42)
	require.NoError(t, m.Put(k1, &v1))

	var out cbg.CborInt
	found, err := m.Get(k1, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, v1, out)

	found, err = m.Get(abiAddrKey(t, 102), &out)
	require.NoError(t, err)
	assert.False(t, found)

	// Overwrite.
	v2 := cbg.CborInt(7)
	require.NoError(t, m.Put(k1, &v2))
	_, err = m.Get(k1, &out)
	require.NoError(t, err)
	assert.Equal(t, v2, out)
}

func TestMapRootRoundTrip(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	for i := uint64(100); i < 110; i++ {
		v := cbg.CborInt(i)
		require.NoError(t, m.Put(abiAddrKey(t, i), &v))
	}

	root, err := m.Root()
	require.NoError(t, err)

	reloaded, err := adt.AsMap(store, root, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	var out cbg.CborInt
	count := 0
	err = reloaded.ForEach(&out, func(key string) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	keys, err := reloaded.CollectKeys()
	require.NoError(t, err)
	assert.Len(t, keys, 10)
}

func TestMapDelete(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	k := abiAddrKey(t, 101)
	v := cbg.CborInt(42)
	require.NoError(t, m.Put(k, &v))

	has, err := m.Has(k)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, m.Delete(k))

	has, err = m.Has(k)
	require.NoError(t, err)
	assert.False(t, has)

	// Deleting an absent key is an error.
	err = m.Delete(abiAddrKey(t, 102))
	assert.Error(t, err)
}

func abiAddrKey(t *testing.T, id uint64) abi.Keyer {
	return abi.AddrKey(tutil.NewIDAddr(t, id))
}
