// Package store keeps the order history of a single snapshot slot in memory.
//
// A Store is not safe for concurrent use, callers serialize access to it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"orderharvest/internal/components/assert"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/orders"
	"orderharvest/internal/snapshot"
)

const (
	report_store_load    = "store.load"
	report_store_persist = "store.persist"
	report_store_clear   = "store.clear"
)

// ErrNotLoaded is returned by Persist when the store has not been loaded
// successfully, a corrupt snapshot must be cleared before it can be replaced.
var ErrNotLoaded = errors.New("store has not been loaded")

type Store struct {
	slot snapshot.Slot
	tel  telemetry.API

	orders []orders.Order
	index  map[string]int
	loaded bool
}

func New(slot snapshot.Slot, tel telemetry.API) *Store {
	assert.NotNil(slot)
	assert.NotNil(tel)

	return &Store{
		slot:  slot,
		tel:   telemetry.NewScopedAPI("store", tel),
		index: map[string]int{},
	}
}

func (s *Store) Slot() string {
	return s.slot.Name()
}

// Load replaces the in-memory state with the stored snapshot, a missing
// snapshot loads as empty. A snapshot that cannot be decoded fails with
// *orders.CorruptStateError and leaves the store unloaded.
func (s *Store) Load(ctx context.Context) ([]orders.Order, error) {
	payload, found, err := s.slot.Read(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_load, err, s.slot.Name())
		return nil, fmt.Errorf("read snapshot %q: %w", s.slot.Name(), err)
	}

	var list []orders.Order
	if found && len(payload) > 0 {
		err = json.Unmarshal(payload, &list)
		if err != nil {
			s.tel.ReportBroken(report_store_load, err, s.slot.Name())
			return nil, &orders.CorruptStateError{Slot: s.slot.Name(), Err: err}
		}
	}

	index := make(map[string]int, len(list))
	for i, o := range list {
		if o.Key == "" {
			err := fmt.Errorf("order at position %d has no order number", i)
			s.tel.ReportBroken(report_store_load, err, s.slot.Name())
			return nil, &orders.CorruptStateError{Slot: s.slot.Name(), Err: err}
		}
		if _, dup := index[o.Key]; dup {
			err := fmt.Errorf("order number %q appears more than once", o.Key)
			s.tel.ReportBroken(report_store_load, err, s.slot.Name())
			return nil, &orders.CorruptStateError{Slot: s.slot.Name(), Err: err}
		}
		index[o.Key] = i
	}

	s.orders = list
	s.index = index
	s.loaded = true
	s.tel.ReportCount(report_store_load, int64(len(list)))
	return s.Orders(), nil
}

// FindByKey looks the order up in the in-memory state.
func (s *Store) FindByKey(key string) (orders.Order, bool) {
	i, ok := s.index[key]
	if !ok {
		return orders.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// Upsert appends order when its key is unknown. For a known key only the
// payment and shipping status are overwritten, everything else including the
// detail is left as it was. It reports whether the order was inserted.
func (s *Store) Upsert(order orders.Order) bool {
	assert.NotEmptyStr(order.Key)

	i, ok := s.index[order.Key]
	if !ok {
		s.index[order.Key] = len(s.orders)
		s.orders = append(s.orders, order.Clone())
		return true
	}
	s.orders[i].PaymentStatus = order.PaymentStatus
	s.orders[i].ShippingStatus = order.ShippingStatus
	return false
}

// SetDetail fills in the detail of a known order that has none yet, a detail
// that is already present is never replaced.
func (s *Store) SetDetail(key string, detail orders.Detail) bool {
	i, ok := s.index[key]
	if !ok || s.orders[i].Detail != nil {
		return false
	}
	owned := detail
	owned.LineItems = append([]orders.LineItem{}, detail.LineItems...)
	s.orders[i].Detail = &owned
	return true
}

// Sort orders the store by orders.CompareKeys.
func (s *Store) Sort() {
	orders.SortByKey(s.orders)
	for i, o := range s.orders {
		s.index[o.Key] = i
	}
}

func (s *Store) Len() int {
	return len(s.orders)
}

// Orders returns a copy of the current state in store order.
func (s *Store) Orders() []orders.Order {
	out := make([]orders.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Persist writes the whole in-memory state to the slot, replacing the
// previous snapshot.
func (s *Store) Persist(ctx context.Context) error {
	if !s.loaded {
		return ErrNotLoaded
	}

	list := s.orders
	if list == nil {
		list = []orders.Order{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		s.tel.ReportBroken(report_store_persist, fmt.Errorf("marshal: %w", err))
		return err
	}

	err = s.slot.Write(ctx, payload, len(list))
	if err != nil {
		s.tel.ReportBroken(report_store_persist, err, s.slot.Name())
		return fmt.Errorf("write snapshot %q: %w", s.slot.Name(), err)
	}
	return nil
}

// Clear empties the store and deletes its snapshot.
func (s *Store) Clear(ctx context.Context) error {
	err := s.slot.Delete(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_clear, err, s.slot.Name())
		return fmt.Errorf("delete snapshot %q: %w", s.slot.Name(), err)
	}
	s.orders = nil
	s.index = map[string]int{}
	s.loaded = true
	return nil
}

// Clone returns an independent copy backed by the same slot, changes to the
// copy are not visible in s until they are adopted with Replace.
func (s *Store) Clone() *Store {
	clone := &Store{
		slot:   s.slot,
		tel:    s.tel,
		orders: s.Orders(),
		index:  make(map[string]int, len(s.index)),
		loaded: s.loaded,
	}
	for k, v := range s.index {
		clone.index[k] = v
	}
	return clone
}

// Replace makes the state of other the state of s.
func (s *Store) Replace(other *Store) {
	s.orders = other.Orders()
	s.index = make(map[string]int, len(other.index))
	for k, v := range other.index {
		s.index[k] = v
	}
	s.loaded = other.loaded
}
