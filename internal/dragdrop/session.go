package dragdrop

import (
	"context"

	"epitrello/internal/logs"
	"epitrello/internal/service"
)

// Session tracks one card drag gesture. It keeps its own snapshot of the
// per-list card-id sequences, spliced incrementally on drag-over, so preview
// computation never re-reads state the previews themselves just changed.
// Every applied preview is pushed through the coordinator so the visible
// board updates immediately; the snapshot and the store stay in lockstep.
type Session struct {
	svc          *service.BoardService
	draggedID    string
	originListID string
	snapshot     map[string][]string
	moved        bool
}

// StartCard begins a drag for the given card, cloning the current card
// indices from the store.
func StartCard(svc *service.BoardService, cardID string) *Session {
	s := &Session{
		svc:       svc,
		draggedID: cardID,
		snapshot:  svc.Store().CardIDsByList(),
	}
	s.originListID = s.currentListID()
	logs.Debug().Str("card", cardID).Str("list", s.originListID).Msg("drag start")
	return s
}

// currentListID finds the list whose snapshot sequence currently holds the
// dragged card.
func (s *Session) currentListID() string {
	for listID, ids := range s.snapshot {
		for _, id := range ids {
			if id == s.draggedID {
				return listID
			}
		}
	}
	return ""
}

// Over applies one drag-over tick against the resolved target. Same-list
// ticks are single-element move-to-index operations and only fire when the
// pointer is over a sibling card; cross-list ticks splice the card out of
// its current sequence and into the target's.
func (s *Session) Over(t Target) {
	cur := s.currentListID()
	if cur == "" || t.ListID == "" || t.CardID == s.draggedID {
		return
	}

	if t.ListID == cur {
		// Reordering against empty list space is meaningless within the
		// same list; skip to avoid redundant writes.
		if t.CardID == "" {
			return
		}
		ids := s.snapshot[cur]
		from := indexOf(ids, s.draggedID)
		to := indexOf(ids, t.CardID)
		if from < 0 || to < 0 || from == to {
			return
		}
		reordered := moveToIndex(ids, from, to)
		s.snapshot[cur] = reordered
		s.moved = true
		s.svc.OptimisticMoveCard(s.draggedID, cur, cur, reordered, nil)
		return
	}

	source := withoutID(s.snapshot[cur], s.draggedID)
	target := s.snapshot[t.ListID]
	at := len(target)
	if t.CardID != "" {
		if i := indexOf(target, t.CardID); i >= 0 {
			at = i
		}
	}
	spliced := make([]string, 0, len(target)+1)
	spliced = append(spliced, target[:at]...)
	spliced = append(spliced, s.draggedID)
	spliced = append(spliced, target[at:]...)

	s.snapshot[cur] = source
	s.snapshot[t.ListID] = spliced
	s.moved = true
	s.svc.OptimisticMoveCard(s.draggedID, cur, t.ListID, source, spliced)
}

// End finishes the gesture: the final parent and index are read back from
// the committed store state (already mutated by the last drag-over) and sent
// to the server. When no preview was ever applied there is nothing to
// commit. Either way the snapshot is discarded; there is no revert of the
// last applied preview.
func (s *Session) End(ctx context.Context) (bool, error) {
	defer func() { s.snapshot = nil }()
	if !s.moved {
		return false, nil
	}

	st := s.svc.Store()
	card, ok := st.Card(s.draggedID)
	if !ok {
		return false, nil
	}
	index := indexOf(st.CardIDs(card.ListID), s.draggedID)
	if index < 0 {
		return false, nil
	}
	logs.Debug().Str("card", s.draggedID).Str("list", card.ListID).Int("index", index).Msg("drag end")
	err := s.svc.CommitMoveCard(ctx, s.draggedID, card.ListID, float64(index))
	return true, err
}

// DraggedID returns the card this session is moving.
func (s *Session) DraggedID() string { return s.draggedID }

// OriginListID returns the list the card was in at drag start.
func (s *Session) OriginListID() string { return s.originListID }

// ListSession tracks a list drag within one board.
type ListSession struct {
	svc       *service.BoardService
	boardID   string
	draggedID string
	order     []string
	moved     bool
}

func StartList(svc *service.BoardService, boardID, listID string) *ListSession {
	return &ListSession{
		svc:       svc,
		boardID:   boardID,
		draggedID: listID,
		order:     svc.Store().ListIDs(boardID),
	}
}

// Over moves the dragged list to the position of the target list.
func (s *ListSession) Over(targetListID string) {
	from := indexOf(s.order, s.draggedID)
	to := indexOf(s.order, targetListID)
	if from < 0 || to < 0 || from == to || targetListID == s.draggedID {
		return
	}
	s.order = moveToIndex(s.order, from, to)
	s.moved = true
	s.svc.OptimisticMoveLists(s.boardID, s.order)
}

func (s *ListSession) End(ctx context.Context) (bool, error) {
	if !s.moved {
		return false, nil
	}
	index := indexOf(s.svc.Store().ListIDs(s.boardID), s.draggedID)
	if index < 0 {
		return false, nil
	}
	err := s.svc.CommitMoveList(ctx, s.draggedID, float64(index))
	return true, err
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func withoutID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// moveToIndex removes the element at from and reinserts it at to, returning
// a new slice.
func moveToIndex(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	tail := make([]string, 0, len(ids))
	tail = append(tail, out[:to]...)
	tail = append(tail, ids[from])
	tail = append(tail, out[to:]...)
	return tail
}
