package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/model"
)

// mockStore backs all repository interfaces in-memory. WithinTx holds the
// store mutex for the whole unit of work and restores a snapshot when the
// unit fails, so tests exercise the same all-or-nothing and isolation
// guarantees the Postgres implementation provides.
type mockStore struct {
	mu sync.Mutex

	users map[int64]*model.User
	slots map[int64]*model.Slot
	swaps map[int64]*model.SwapRequest

	nextUserID int64
	nextSlotID int64
	nextSwapID int64
}

func newMockStore() *mockStore {
	return &mockStore{
		users: make(map[int64]*model.User),
		slots: make(map[int64]*model.Slot),
		swaps: make(map[int64]*model.SwapRequest),
	}
}

type txActiveKey struct{}

// lock acquires the store mutex unless the context already runs inside a
// transaction, which holds it for the whole unit of work.
func (s *mockStore) lock(ctx context.Context) func() {
	if ctx.Value(txActiveKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type storeSnapshot struct {
	users map[int64]*model.User
	slots map[int64]*model.Slot
	swaps map[int64]*model.SwapRequest
}

func (s *mockStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		users: make(map[int64]*model.User, len(s.users)),
		slots: make(map[int64]*model.Slot, len(s.slots)),
		swaps: make(map[int64]*model.SwapRequest, len(s.swaps)),
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, sl := range s.slots {
		cp := *sl
		snap.slots[id] = &cp
	}
	for id, sw := range s.swaps {
		cp := *sw
		snap.swaps[id] = &cp
	}
	return snap
}

func (s *mockStore) restore(snap storeSnapshot) {
	s.users = snap.users
	s.slots = snap.slots
	s.swaps = snap.swaps
}

// WithinTx implements repository.TxManager.
func (s *mockStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txActiveKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// addUser seeds an account outside any test flow.
func (s *mockStore) addUser(name, email string) *model.User {
	s.nextUserID++
	u := &model.User{ID: s.nextUserID, Name: name, Email: email, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u
}

// addSlot seeds a slot record outside any test flow.
func (s *mockStore) addSlot(ownerID int64, title string, status model.SlotStatus) *model.Slot {
	s.nextSlotID++
	start := time.Now().Add(time.Duration(s.nextSlotID) * time.Hour)
	sl := &model.Slot{
		ID:        s.nextSlotID,
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		OwnerID:   ownerID,
		Status:    status,
	}
	s.slots[sl.ID] = sl
	return sl
}

// addSwap seeds a negotiation record directly, bypassing the coordinator.
func (s *mockStore) addSwap(requesterID, recipientID, offeredID, targetID int64, status model.SwapStatus) *model.SwapRequest {
	s.nextSwapID++
	sw := &model.SwapRequest{
		ID:            s.nextSwapID,
		RequesterID:   requesterID,
		RecipientID:   recipientID,
		OfferedSlotID: offeredID,
		TargetSlotID:  targetID,
		Status:        status,
		CreatedAt:     time.Now(),
	}
	s.swaps[sw.ID] = sw
	return sw
}

// ── UserRepository ──

type mockUserRepo struct{ store *mockStore }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	defer m.store.lock(ctx)()
	for _, u := range m.store.users {
		if u.Email == user.Email {
			return apperr.ErrEmailTaken
		}
	}
	m.store.nextUserID++
	user.ID = m.store.nextUserID
	user.CreatedAt = time.Now()
	cp := *user
	m.store.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	defer m.store.lock(ctx)()
	if u, ok := m.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer m.store.lock(ctx)()
	for _, u := range m.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ── SlotRepository ──

type mockSlotRepo struct{ store *mockStore }

func (m *mockSlotRepo) Create(ctx context.Context, slot *model.Slot) error {
	defer m.store.lock(ctx)()
	m.store.nextSlotID++
	slot.ID = m.store.nextSlotID
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	cp := *slot
	m.store.slots[slot.ID] = &cp
	return nil
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	defer m.store.lock(ctx)()
	if sl, ok := m.store.slots[id]; ok {
		cp := *sl
		return &cp, nil
	}
	return nil, nil
}

func (m *mockSlotRepo) GetByOwner(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	defer m.store.lock(ctx)()
	var out []*model.Slot
	for _, sl := range m.store.slots {
		if sl.OwnerID == ownerID {
			cp := *sl
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *mockSlotRepo) GetOfferableExcluding(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	defer m.store.lock(ctx)()
	var out []*model.Slot
	for _, sl := range m.store.slots {
		if sl.OwnerID != ownerID && sl.Status == model.SlotStatusOfferable {
			cp := *sl
			if owner, ok := m.store.users[sl.OwnerID]; ok {
				ocp := *owner
				cp.Owner = &ocp
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *mockSlotRepo) Update(ctx context.Context, slot *model.Slot) error {
	defer m.store.lock(ctx)()
	cur, ok := m.store.slots[slot.ID]
	if !ok || cur.OwnerID != slot.OwnerID || cur.Status == model.SlotStatusReserved {
		return apperr.ErrConflict
	}
	cur.Title = slot.Title
	cur.StartTime = slot.StartTime
	cur.EndTime = slot.EndTime
	cur.Status = slot.Status
	cur.UpdatedAt = time.Now()
	slot.UpdatedAt = cur.UpdatedAt
	return nil
}

func (m *mockSlotRepo) Delete(ctx context.Context, id, ownerID int64) error {
	defer m.store.lock(ctx)()
	cur, ok := m.store.slots[id]
	if !ok || cur.OwnerID != ownerID || cur.Status == model.SlotStatusReserved {
		return apperr.ErrConflict
	}
	delete(m.store.slots, id)
	return nil
}

func (m *mockSlotRepo) Reserve(ctx context.Context, slotID, ownerID int64) (*model.Slot, error) {
	defer m.store.lock(ctx)()
	cur, ok := m.store.slots[slotID]
	if !ok || cur.OwnerID != ownerID || cur.Status != model.SlotStatusOfferable {
		return nil, apperr.ErrSlotNotOfferable
	}
	cur.Status = model.SlotStatusReserved
	cp := *cur
	return &cp, nil
}

func (m *mockSlotRepo) ReserveForeign(ctx context.Context, slotID, notOwnerID int64) (*model.Slot, error) {
	defer m.store.lock(ctx)()
	cur, ok := m.store.slots[slotID]
	if !ok || cur.OwnerID == notOwnerID || cur.Status != model.SlotStatusOfferable {
		return nil, apperr.ErrSlotNotOfferable
	}
	cur.Status = model.SlotStatusReserved
	cp := *cur
	return &cp, nil
}

func (m *mockSlotRepo) Release(ctx context.Context, slotID int64) error {
	defer m.store.lock(ctx)()
	cur, ok := m.store.slots[slotID]
	if !ok || cur.Status != model.SlotStatusReserved {
		return apperr.ErrConflict
	}
	cur.Status = model.SlotStatusOfferable
	return nil
}

func (m *mockSlotRepo) Reassign(ctx context.Context, slotID, newOwnerID int64) error {
	defer m.store.lock(ctx)()
	cur, ok := m.store.slots[slotID]
	if !ok || cur.Status != model.SlotStatusReserved {
		return apperr.ErrConflict
	}
	cur.OwnerID = newOwnerID
	cur.Status = model.SlotStatusBusy
	return nil
}

// ── SwapRepository ──

type mockSwapRepo struct{ store *mockStore }

func (m *mockSwapRepo) CreateIfUnclaimed(ctx context.Context, req *model.SwapRequest) error {
	defer m.store.lock(ctx)()
	for _, sw := range m.store.swaps {
		if sw.Status != model.SwapStatusPending {
			continue
		}
		for _, id := range []int64{req.OfferedSlotID, req.TargetSlotID} {
			if sw.OfferedSlotID == id || sw.TargetSlotID == id {
				return apperr.ErrSlotAlreadyPending
			}
		}
	}
	m.store.nextSwapID++
	req.ID = m.store.nextSwapID
	req.Status = model.SwapStatusPending
	req.CreatedAt = time.Now()
	cp := *req
	m.store.swaps[req.ID] = &cp
	return nil
}

func (m *mockSwapRepo) GetByID(ctx context.Context, id int64) (*model.SwapRequest, error) {
	defer m.store.lock(ctx)()
	if sw, ok := m.store.swaps[id]; ok {
		cp := *sw
		return &cp, nil
	}
	return nil, nil
}

func (m *mockSwapRepo) Transition(ctx context.Context, id int64, from, to model.SwapStatus) error {
	defer m.store.lock(ctx)()
	cur, ok := m.store.swaps[id]
	if !ok || cur.Status != from {
		return apperr.ErrAlreadyHandled
	}
	cur.Status = to
	return nil
}

func (m *mockSwapRepo) ListPendingBySlots(ctx context.Context, slotA, slotB, excludeID int64) ([]*model.SwapRequest, error) {
	defer m.store.lock(ctx)()
	var out []*model.SwapRequest
	for _, sw := range m.store.swaps {
		if sw.Status != model.SwapStatusPending || sw.ID == excludeID {
			continue
		}
		if sw.OfferedSlotID == slotA || sw.OfferedSlotID == slotB ||
			sw.TargetSlotID == slotA || sw.TargetSlotID == slotB {
			cp := *sw
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSwapRepo) ListIncoming(ctx context.Context, recipientID int64) ([]*model.SwapRequest, error) {
	defer m.store.lock(ctx)()
	var out []*model.SwapRequest
	for _, sw := range m.store.swaps {
		if sw.RecipientID == recipientID {
			cp := *sw
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockSwapRepo) ListOutgoing(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	defer m.store.lock(ctx)()
	var out []*model.SwapRequest
	for _, sw := range m.store.swaps {
		if sw.RequesterID == requesterID {
			cp := *sw
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
