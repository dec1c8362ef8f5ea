package core

import (
	"fmt"
	"sync"
)

// Identifier is an opaque handle packing a slot index (low 32 bits) and the slot
// generation (high 32 bits). Released slots are reused with a bumped generation,
// so a stale Identifier never resolves to a newer owner.
type Identifier uint64

// AllRenderers addresses every renderer identity at once.
const AllRenderers Identifier = ^Identifier(0)

// InvalidID is never handed out by IdentifierAquireNewID.
const InvalidID Identifier = 0

type identifierSlot struct {
	owner      interface{}
	generation uint32
}

var (
	ownersMu sync.Mutex
	owners   []identifierSlot
)

func newIdentifier(index, generation uint32) Identifier {
	return Identifier(uint64(generation)<<32 | uint64(index))
}

func (id Identifier) index() uint32 {
	return uint32(id)
}

func (id Identifier) generation() uint32 {
	return uint32(id >> 32)
}

func (id Identifier) String() string {
	if id == AllRenderers {
		return "all"
	}
	return fmt.Sprintf("%d#%d", id.index(), id.generation())
}

// IdentifierAquireNewID registers owner and returns an identity that stays
// unique among live owners.
func IdentifierAquireNewID(owner interface{}) Identifier {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if len(owners) == 0 {
		owners = make([]identifierSlot, 0, 16)
	}
	for i := range owners {
		// Existing free spot. Take it.
		if owners[i].owner == nil {
			owners[i].owner = owner
			return newIdentifier(uint32(i), owners[i].generation)
		}
	}

	// If here, no existing free slots. Generation starts at 1 so that the
	// zero Identifier stays invalid.
	owners = append(owners, identifierSlot{owner: owner, generation: 1})
	return newIdentifier(uint32(len(owners)-1), 1)
}

// IdentifierReleaseID frees the slot of id. Lookups of id fail afterwards.
func IdentifierReleaseID(id Identifier) error {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if len(owners) == 0 {
		return fmt.Errorf("IdentifierReleaseID called before any identifier was acquired. Nothing was done")
	}
	idx := id.index()
	if idx >= uint32(len(owners)) {
		return fmt.Errorf("IdentifierReleaseID: id '%s' out of range (max=%d). Nothing was done", id, len(owners))
	}
	slot := &owners[idx]
	if slot.owner == nil || slot.generation != id.generation() {
		return fmt.Errorf("IdentifierReleaseID: id '%s' is stale. Nothing was done", id)
	}

	slot.owner = nil
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	return nil
}

// IdentifierLookup returns the owner registered under id, if it is still live.
func IdentifierLookup(id Identifier) (interface{}, bool) {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	idx := id.index()
	if id == AllRenderers || idx >= uint32(len(owners)) {
		return nil, false
	}
	slot := owners[idx]
	if slot.owner == nil || slot.generation != id.generation() {
		return nil, false
	}
	return slot.owner, true
}
