package base

import "fmt"

// Entity identifies one entity in a store. The ID addresses a slot in the
// entity index; Gen is the slot's generation at the time the entity was
// created, used to detect references to a deleted-and-reused slot.
type Entity struct {
	ID  uint32
	Gen uint32
}

// Zero is the invalid entity. Index slot 0 is never allocated.
var Zero = Entity{}

func (e Entity) IsZero() bool {
	return e.ID == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("e%d.g%d", e.ID, e.Gen)
}

// TableID addresses a slot in the store's table arena. Slot 0 is reserved
// for the builtin component-registry table.
type TableID uint32
