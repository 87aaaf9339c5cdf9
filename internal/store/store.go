// Package store holds the normalized client-side cache of boards, lists and
// cards, plus the ordered child-id indices that the reordering engine
// manipulates. It is pure data: no I/O happens here.
package store

import (
	"sort"
	"sync"

	"epitrello/internal/model"
)

// Store keeps two mutually consistent representations of order: each
// entity's Position field, and the ordered id slices in listsByBoard /
// cardsByList. Every mutation maintains both, because derived views re-sort
// by Position while drag logic splices the id slices directly.
type Store struct {
	mu sync.RWMutex

	boards map[string]*model.Board
	lists  map[string]*model.List
	cards  map[string]*model.Card

	listsByBoard map[string][]string
	cardsByList  map[string][]string
}

func New() *Store {
	return &Store{
		boards:       make(map[string]*model.Board),
		lists:        make(map[string]*model.List),
		cards:        make(map[string]*model.Card),
		listsByBoard: make(map[string][]string),
		cardsByList:  make(map[string][]string),
	}
}

// --- boards ---

func (s *Store) UpsertBoard(b model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[b.ID] = &b
	if _, ok := s.listsByBoard[b.ID]; !ok {
		s.listsByBoard[b.ID] = []string{}
	}
}

// RemoveBoard deletes a board together with its lists and their cards.
func (s *Store) RemoveBoard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, listID := range s.listsByBoard[id] {
		s.removeListLocked(listID)
	}
	delete(s.listsByBoard, id)
	delete(s.boards, id)
}

func (s *Store) Board(id string) (model.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[id]
	if !ok {
		return model.Board{}, false
	}
	return *b, true
}

func (s *Store) Boards() []model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Board, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- lists ---

// UpsertList inserts or overwrites a list. If the owning board changed, the
// id is removed from the old board's index and sorted into the new one.
func (s *Store) UpsertList(l model.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.lists[l.ID]; ok && prev.BoardID != l.BoardID {
		s.listsByBoard[prev.BoardID] = removeID(s.listsByBoard[prev.BoardID], l.ID)
	}
	s.lists[l.ID] = &l
	if !containsID(s.listsByBoard[l.BoardID], l.ID) {
		s.listsByBoard[l.BoardID] = append(s.listsByBoard[l.BoardID], l.ID)
	}
	s.sortListIDsLocked(l.BoardID)
	if _, ok := s.cardsByList[l.ID]; !ok {
		s.cardsByList[l.ID] = []string{}
	}
}

// RemoveList deletes a list and every card it contains.
func (s *Store) RemoveList(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeListLocked(id)
}

func (s *Store) removeListLocked(id string) {
	if l, ok := s.lists[id]; ok {
		s.listsByBoard[l.BoardID] = removeID(s.listsByBoard[l.BoardID], id)
	}
	for _, cardID := range s.cardsByList[id] {
		delete(s.cards, cardID)
	}
	delete(s.cardsByList, id)
	delete(s.lists, id)
}

// ReorderLists replaces the board's list index verbatim and rewrites each
// list's Position to its index in the sequence.
func (s *Store) ReorderLists(boardID string, orderedIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(orderedIDs))
	copy(ids, orderedIDs)
	s.listsByBoard[boardID] = ids
	for i, id := range ids {
		if l, ok := s.lists[id]; ok {
			l.Position = float64(i)
		}
	}
}

// ReplaceBoardLists applies a fresh fetch: the board's index is rebuilt from
// the fetched lists alone. A previously indexed list missing from the fetch
// is dropped (with its cards) unless it moved to another board meanwhile.
func (s *Store) ReplaceBoardLists(boardID string, lists []model.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.listsByBoard[boardID]
	fresh := make(map[string]bool, len(lists))
	ids := make([]string, 0, len(lists))
	for _, l := range lists {
		l := l
		s.lists[l.ID] = &l
		fresh[l.ID] = true
		ids = append(ids, l.ID)
		if _, ok := s.cardsByList[l.ID]; !ok {
			s.cardsByList[l.ID] = []string{}
		}
	}
	s.listsByBoard[boardID] = ids
	s.sortListIDsLocked(boardID)
	for _, id := range old {
		if fresh[id] {
			continue
		}
		if l, ok := s.lists[id]; ok && l.BoardID == boardID {
			s.removeListLocked(id)
		}
	}
}

func (s *Store) List(id string) (model.List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[id]
	if !ok {
		return model.List{}, false
	}
	return *l, true
}

// ListsInBoard returns the board's lists in index order.
func (s *Store) ListsInBoard(boardID string) []model.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.listsByBoard[boardID]
	out := make([]model.List, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.lists[id]; ok {
			out = append(out, *l)
		}
	}
	return out
}

// --- cards ---

// UpsertCard inserts or overwrites a card. If the owning list changed, the
// id is removed from the old list's index and sorted into the new one.
func (s *Store) UpsertCard(c model.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.cards[c.ID]; ok && prev.ListID != c.ListID {
		s.cardsByList[prev.ListID] = removeID(s.cardsByList[prev.ListID], c.ID)
	}
	s.cards[c.ID] = &c
	if !containsID(s.cardsByList[c.ListID], c.ID) {
		s.cardsByList[c.ListID] = append(s.cardsByList[c.ListID], c.ID)
	}
	s.sortCardIDsLocked(c.ListID)
}

// RemoveCard deletes a card and purges its id from every list index.
func (s *Store) RemoveCard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cards, id)
	for listID, ids := range s.cardsByList {
		s.cardsByList[listID] = removeID(ids, id)
	}
}

// ReorderCards replaces the list's card index verbatim with orderedIDs and
// rewrites each card's Position to its index in the sequence. Both updates
// are required: drag previews splice the index, while other views re-sort
// by Position.
func (s *Store) ReorderCards(listID string, orderedIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(orderedIDs))
	copy(ids, orderedIDs)
	s.cardsByList[listID] = ids
	for i, id := range ids {
		if c, ok := s.cards[id]; ok {
			c.Position = float64(i)
		}
	}
}

// SetCardList rewrites a card's owning-list field without touching indices.
// Callers pair this with ReorderCards on the affected lists.
func (s *Store) SetCardList(cardID, listID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cards[cardID]; ok {
		c.ListID = listID
	}
}

// ReplaceListCards applies a fresh fetch for one list: the index is rebuilt
// from the fetched cards alone. A previously indexed card missing from the
// fetch is deleted unless it moved to another list meanwhile.
func (s *Store) ReplaceListCards(listID string, cards []model.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cardsByList[listID]
	fresh := make(map[string]bool, len(cards))
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		c := c
		if prev, ok := s.cards[c.ID]; ok && prev.ListID != c.ListID {
			s.cardsByList[prev.ListID] = removeID(s.cardsByList[prev.ListID], c.ID)
		}
		s.cards[c.ID] = &c
		fresh[c.ID] = true
		ids = append(ids, c.ID)
	}
	s.cardsByList[listID] = ids
	s.sortCardIDsLocked(listID)
	for _, id := range old {
		if fresh[id] {
			continue
		}
		if c, ok := s.cards[id]; ok && c.ListID == listID {
			delete(s.cards, id)
		}
	}
}

func (s *Store) Card(id string) (model.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return model.Card{}, false
	}
	return *c, true
}

// CardsInList returns the list's cards in index order.
func (s *Store) CardsInList(listID string) []model.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.cardsByList[listID]
	out := make([]model.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.cards[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// CardIDsByList returns a deep copy of every list's card-id index. The drag
// session clones this at drag start and splices the copy on drag-over.
func (s *Store) CardIDsByList() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.cardsByList))
	for listID, ids := range s.cardsByList {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[listID] = cp
	}
	return out
}

// CardIDs returns the card-id index for a single list.
func (s *Store) CardIDs(listID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.cardsByList[listID]
	cp := make([]string, len(ids))
	copy(cp, ids)
	return cp
}

// ListIDs returns the list-id index for a board.
func (s *Store) ListIDs(boardID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.listsByBoard[boardID]
	cp := make([]string, len(ids))
	copy(cp, ids)
	return cp
}

// --- ordering ---

// sortCardIDsLocked re-derives index order from positions: ascending by
// Position, ties broken by ascending id. Stable and deterministic.
func (s *Store) sortCardIDsLocked(listID string) {
	ids := s.cardsByList[listID]
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.cards[ids[i]], s.cards[ids[j]]
		if a == nil || b == nil {
			return a != nil
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

func (s *Store) sortListIDsLocked(boardID string) {
	ids := s.listsByBoard[boardID]
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.lists[ids[i]], s.lists[ids[j]]
		if a == nil || b == nil {
			return a != nil
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
