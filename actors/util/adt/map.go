package adt

import (
	"bytes"

	hamt "github.com/filecoin-project/go-hamt-ipld/v3"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/cbor"
	cid "github.com/ipfs/go-cid"
	sha256 "github.com/minio/sha256-simd"
	errors "github.com/pkg/errors"
	cbg "github.com/whyrusleeping/cbor-gen"
)

// DefaultHamtOptions specifies default options used to construct HAMTs.
// Specific HAMT instances may specify additional options, notably the bitwidth.
var DefaultHamtOptions = []hamt.Option{
	hamt.UseHashFunction(func(input []byte) []byte {
		res := sha256.Sum256(input)
		return res[:]
	}),
}

// Map stores key-value pairs in a HAMT.
type Map struct {
	lastCid cid.Cid
	root    *hamt.Node
	store   Store
}

// AsMap interprets a store as a HAMT-based map with root `root`.
// The HAMT is interpreted with branching factor 2^bitwidth.
func AsMap(s Store, root cid.Cid, bitwidth int) (*Map, error) {
	options := append(DefaultHamtOptions, hamt.UseTreeBitWidth(bitwidth))
	nd, err := hamt.LoadNode(s.Context(), s, root, options...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load hamt node %v", root)
	}

	return &Map{
		lastCid: root,
		root:    nd,
		store:   s,
	}, nil
}

// MakeEmptyMap creates a new map backed by an empty HAMT.
func MakeEmptyMap(s Store, bitwidth int) (*Map, error) {
	options := append(DefaultHamtOptions, hamt.UseTreeBitWidth(bitwidth))
	nd, err := hamt.NewNode(s, options...)
	if err != nil {
		return nil, err
	}
	return &Map{
		lastCid: cid.Undef,
		root:    nd,
		store:   s,
	}, nil
}

// StoreEmptyMap creates and stores a new empty map, returning its CID.
func StoreEmptyMap(s Store, bitwidth int) (cid.Cid, error) {
	nd, err := MakeEmptyMap(s, bitwidth)
	if err != nil {
		return cid.Undef, err
	}
	return nd.Root()
}

// Root flushes the map and returns the root cid of the underlying HAMT.
func (m *Map) Root() (cid.Cid, error) {
	if err := m.root.Flush(m.store.Context()); err != nil {
		return cid.Undef, errors.Wrapf(err, "failed to flush map root")
	}

	c, err := m.store.Put(m.store.Context(), m.root)
	if err != nil {
		return cid.Undef, errors.Wrapf(err, "failed to persist map root")
	}

	m.lastCid = c
	return c, nil
}

// Put adds value `v` with key `k` to the hamt store.
func (m *Map) Put(k abi.Keyer, v cbor.Marshaler) error {
	if err := m.root.Set(m.store.Context(), k.Key(), v); err != nil {
		return errors.Wrapf(err, "failed to set key %v value %v", k.Key(), v)
	}
	return nil
}

// Get retrieves the value at `k` into `out`, if the `k` is present in the map.
// Returns whether the key was found.
func (m *Map) Get(k abi.Keyer, out cbor.Unmarshaler) (bool, error) {
	found, err := m.root.Find(m.store.Context(), k.Key(), out)
	if err != nil {
		return false, errors.Wrapf(err, "failed to get key %v", m.lastCid)
	}
	return found, nil
}

// Has checks for the existence of a key without deserializing its value.
func (m *Map) Has(k abi.Keyer) (bool, error) {
	found, err := m.root.Find(m.store.Context(), k.Key(), nil)
	if err != nil {
		return false, errors.Wrapf(err, "failed to check key %v", m.lastCid)
	}
	return found, nil
}

// Delete removes the value at `k` from the hamt store, expecting it to exist.
func (m *Map) Delete(k abi.Keyer) error {
	if found, err := m.root.Delete(m.store.Context(), k.Key()); err != nil {
		return errors.Wrapf(err, "failed to delete key %v", k.Key())
	} else if !found {
		return errors.Errorf("no such key %v to delete", k.Key())
	}
	return nil
}

// ForEach iterates all entries in the map, deserializing each value in turn
// into `out` and then calling a function with the corresponding key.
// Iteration halts if the function returns an error.
// If the output parameter is nil, deserialization is skipped.
func (m *Map) ForEach(out cbor.Unmarshaler, fn func(key string) error) error {
	return m.root.ForEach(m.store.Context(), func(k string, val *cbg.Deferred) error {
		if out != nil {
			// Why doesn't hamt.ForEach() just return the value as bytes?
			err := out.UnmarshalCBOR(bytes.NewReader(val.Raw))
			if err != nil {
				return err
			}
		}
		return fn(k)
	})
}

// CollectKeys collects all the keys from the map into a slice of strings.
func (m *Map) CollectKeys() (out []string, err error) {
	err = m.ForEach(nil, func(key string) error {
		out = append(out, key)
		return nil
	})
	return
}
