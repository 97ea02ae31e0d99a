package inventory

import (
	"fmt"
	"slices"
)

// Stack is a quantity of one item.
type Stack struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Inventory is the trainer's item bag: one stack per item id, in the order
// items were first added.
//
// Invariant: every stack has Quantity >= 1.
type Inventory struct {
	Items []Stack `json:"items"`
}

// NewDefault returns the starting inventory: 5 potions and 10 capture balls.
func NewDefault() *Inventory {
	return &Inventory{Items: []Stack{
		{ItemID: "potion", Quantity: 5},
		{ItemID: "capture_ball", Quantity: 10},
	}}
}

func (inv *Inventory) index(itemID string) int {
	return slices.IndexFunc(inv.Items, func(s Stack) bool { return s.ItemID == itemID })
}

// Quantity returns how many of itemID the inventory holds.
func (inv *Inventory) Quantity(itemID string) int {
	if i := inv.index(itemID); i >= 0 {
		return inv.Items[i].Quantity
	}
	return 0
}

// Has reports whether at least one itemID is held.
func (inv *Inventory) Has(itemID string) bool {
	return inv.Quantity(itemID) > 0
}

// Add places quantity units of itemID into the inventory, up to the item's
// max stack. It is atomic: if the stack limit would be exceeded, no state is
// modified.
//
// Precondition: quantity > 0, itemID exists in reg.
// Postcondition: on error, inventory state is unchanged.
func (inv *Inventory) Add(itemID string, quantity int, reg *Registry) error {
	def, err := reg.Lookup(itemID)
	if err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	if quantity <= 0 {
		return fmt.Errorf("inventory: quantity must be > 0")
	}
	i := inv.index(itemID)
	if i < 0 {
		if quantity > def.MaxStack {
			return fmt.Errorf("inventory: adding %d of %q would exceed max stack %d", quantity, itemID, def.MaxStack)
		}
		inv.Items = append(inv.Items, Stack{ItemID: itemID, Quantity: quantity})
		return nil
	}
	if inv.Items[i].Quantity+quantity > def.MaxStack {
		return fmt.Errorf("inventory: adding %d of %q would exceed max stack %d", quantity, itemID, def.MaxStack)
	}
	inv.Items[i].Quantity += quantity
	return nil
}

// Remove takes quantity units of itemID out of the inventory, dropping the
// stack when it empties.
//
// Postcondition: returns false and changes nothing if fewer than quantity are held.
func (inv *Inventory) Remove(itemID string, quantity int) bool {
	i := inv.index(itemID)
	if i < 0 || quantity <= 0 || inv.Items[i].Quantity < quantity {
		return false
	}
	inv.Items[i].Quantity -= quantity
	if inv.Items[i].Quantity == 0 {
		inv.Items = slices.Delete(inv.Items, i, i+1)
	}
	return true
}

// Clone returns a deep copy.
func (inv *Inventory) Clone() *Inventory {
	return &Inventory{Items: slices.Clone(inv.Items)}
}
