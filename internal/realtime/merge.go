package realtime

import (
	"sync"

	"epitrello/internal/logs"
	"epitrello/internal/model"
	"epitrello/internal/store"
)

// Merger folds push events into the store, in receipt order, skipping events
// the local user caused: those were already applied optimistically, and a
// network copy could be staler than the local state it would overwrite.
type Merger struct {
	store  *store.Store
	selfID string
	// exit signals the UI to leave a board view that became invalid (board
	// deleted, or the local user removed from it).
	exit func(boardID string)

	mu      sync.Mutex
	present map[string]map[string]bool
}

func NewMerger(st *store.Store, selfID string, exit func(boardID string)) *Merger {
	if exit == nil {
		exit = func(string) {}
	}
	return &Merger{
		store:   st,
		selfID:  selfID,
		exit:    exit,
		present: make(map[string]map[string]bool),
	}
}

// Apply merges one event. Returns false when the event was dropped by the
// actor filter.
func (m *Merger) Apply(ev Event) bool {
	if ev.Actor() == m.selfID {
		logs.Debug().Str("actor", ev.Actor()).Msg("dropped self event")
		return false
	}

	switch e := ev.(type) {
	case *BoardUpdated:
		m.store.UpsertBoard(e.Board)
	case *BoardDeleted:
		m.store.RemoveBoard(e.BoardID)
		m.exit(e.BoardID)
	case *ListCreated:
		m.store.UpsertList(e.List)
	case *ListUpdated:
		m.store.UpsertList(e.List)
	case *ListDeleted:
		m.store.RemoveList(e.ListID)
	case *ListMoved:
		m.store.UpsertList(e.List)
		if len(e.ListOrder) > 0 {
			m.store.ReorderLists(e.List.BoardID, e.ListOrder)
		}
	case *CardCreated:
		m.store.UpsertCard(e.Card)
	case *CardUpdated:
		m.store.UpsertCard(e.Card)
	case *CardDeleted:
		m.store.RemoveCard(e.CardID)
	case *CardMoved:
		m.store.UpsertCard(e.Card)
		if len(e.CardOrder) > 0 {
			m.store.ReorderCards(e.Card.ListID, e.CardOrder)
		}
	case *MemberAdded:
		m.withBoard(e.BoardID, func(b *model.Board) {
			b.Members = upsertMember(b.Members, e.Member)
		})
	case *MemberUpdated:
		m.withBoard(e.BoardID, func(b *model.Board) {
			b.Members = upsertMember(b.Members, e.Member)
		})
	case *MemberRemoved:
		m.withBoard(e.BoardID, func(b *model.Board) {
			b.Members = removeMember(b.Members, e.MemberID)
		})
		if e.MemberID == m.selfID {
			m.exit(e.BoardID)
		}
	case *UserJoined:
		m.setPresence(e.BoardID, e.Actor(), true)
	case *UserLeft:
		m.setPresence(e.BoardID, e.Actor(), false)
	}
	return true
}

func (m *Merger) withBoard(boardID string, fn func(*model.Board)) {
	b, ok := m.store.Board(boardID)
	if !ok {
		return
	}
	fn(&b)
	m.store.UpsertBoard(b)
}

func (m *Merger) setPresence(boardID, userID string, here bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.present[boardID] == nil {
		m.present[boardID] = make(map[string]bool)
	}
	if here {
		m.present[boardID][userID] = true
	} else {
		delete(m.present[boardID], userID)
	}
}

// Present reports which users are currently viewing a board.
func (m *Merger) Present(boardID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.present[boardID]))
	for id := range m.present[boardID] {
		out = append(out, id)
	}
	return out
}

// upsertMember and removeMember copy before editing: the input slice is
// aliased by board copies handed out earlier, and those snapshots must not
// change under their holders.

func upsertMember(members []model.Member, member model.Member) []model.Member {
	out := make([]model.Member, len(members))
	copy(out, members)
	for i, existing := range out {
		if existing.ID == member.ID {
			out[i] = member
			return out
		}
	}
	return append(out, member)
}

func removeMember(members []model.Member, id string) []model.Member {
	out := make([]model.Member, 0, len(members))
	for _, existing := range members {
		if existing.ID != id {
			out = append(out, existing)
		}
	}
	return out
}
