// Package service coordinates optimistic mutations: each user action is
// applied to the store synchronously where the UI needs immediate feedback,
// then confirmed against the server, with the canonical response upserted
// back over the optimistic state.
package service

import (
	"context"
	"errors"
	"sync"

	"epitrello/internal/gateway"
	"epitrello/internal/logs"
	"epitrello/internal/model"
	"epitrello/internal/store"
)

// API is the slice of the gateway the coordinator calls. *gateway.Client
// satisfies it; tests substitute a stub.
type API interface {
	Board(ctx context.Context, id string) (model.Board, error)
	Lists(ctx context.Context, boardID string) ([]model.List, error)
	CreateList(ctx context.Context, boardID, title string, position float64) (model.List, error)
	UpdateList(ctx context.Context, id string, patch gateway.ListPatch) (model.List, error)
	DeleteList(ctx context.Context, id string) error
	Cards(ctx context.Context, listID string) ([]model.Card, error)
	CreateCard(ctx context.Context, listID, title, description string, position float64) (model.Card, error)
	UpdateCard(ctx context.Context, id string, patch gateway.CardPatch) (model.Card, error)
	MoveCard(ctx context.Context, id, targetListID string, position float64) (model.Card, error)
	DeleteCard(ctx context.Context, id string) error
}

// State tracks one mutating action through its lifecycle.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

type Status struct {
	State State
	Err   string
}

// BoardService is the optimistic mutation coordinator for one client.
type BoardService struct {
	store *store.Store
	api   API

	mu     sync.Mutex
	status map[string]Status
}

func New(st *store.Store, api API) *BoardService {
	return &BoardService{
		store:  st,
		api:    api,
		status: make(map[string]Status),
	}
}

func (s *BoardService) Store() *store.Store { return s.store }

// CreateKey is the status key for pending/failed creates under a parent.
func CreateKey(parentID string) string { return "create:" + parentID }

// Status returns the recorded state for an action key (an entity id, or
// CreateKey(parent) for creates).
func (s *BoardService) Status(key string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[key]
}

// ClearStatus resets an action key to idle; the UI calls it before retrying.
func (s *BoardService) ClearStatus(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.status, key)
}

func (s *BoardService) setStatus(key string, st State, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[key] = Status{State: st, Err: msg}
}

// LoadBoard fetches a board with its lists and cards, replacing (not
// merging) any stale indices for each parent.
func (s *BoardService) LoadBoard(ctx context.Context, boardID string) error {
	b, err := s.api.Board(ctx, boardID)
	if err != nil {
		return err
	}
	s.store.UpsertBoard(b)

	lists, err := s.api.Lists(ctx, boardID)
	if err != nil {
		return err
	}
	s.store.ReplaceBoardLists(boardID, lists)

	for _, l := range s.store.ListsInBoard(boardID) {
		cards, err := s.api.Cards(ctx, l.ID)
		if err != nil {
			return err
		}
		s.store.ReplaceListCards(l.ID, cards)
	}
	return nil
}

// RefreshCards re-fetches one list's cards with replace semantics.
func (s *BoardService) RefreshCards(ctx context.Context, listID string) error {
	cards, err := s.api.Cards(ctx, listID)
	if err != nil {
		return err
	}
	s.store.ReplaceListCards(listID, cards)
	return nil
}

// --- cards ---

// CreateCard has no optimistic phase: entities only exist once the server
// assigns an id. The returned card lands sorted into its list.
func (s *BoardService) CreateCard(ctx context.Context, listID, title, description string) (model.Card, error) {
	key := CreateKey(listID)
	s.setStatus(key, StatePending, "")
	position := float64(len(s.store.CardIDs(listID)))
	c, err := s.api.CreateCard(ctx, listID, title, description, position)
	if err != nil {
		s.fail(key, "create card", err)
		return model.Card{}, err
	}
	s.store.UpsertCard(c)
	s.setStatus(key, StateSucceeded, "")
	return c, nil
}

// UpdateCard sends the full patch; a patch carrying a list id relocates the
// card between parents when the canonical response is upserted. On failure
// the local entity is untouched.
func (s *BoardService) UpdateCard(ctx context.Context, id string, patch gateway.CardPatch) (model.Card, error) {
	s.setStatus(id, StatePending, "")
	c, err := s.api.UpdateCard(ctx, id, patch)
	if err != nil {
		s.fail(id, "update card", err)
		return model.Card{}, err
	}
	s.store.UpsertCard(c)
	s.setStatus(id, StateSucceeded, "")
	return c, nil
}

func (s *BoardService) DeleteCard(ctx context.Context, id string) error {
	s.setStatus(id, StatePending, "")
	if err := s.api.DeleteCard(ctx, id); err != nil {
		s.fail(id, "delete card", err)
		return err
	}
	s.store.RemoveCard(id)
	s.setStatus(id, StateSucceeded, "")
	return nil
}

// OptimisticMoveCard applies a drag preview synchronously: both affected
// indices are replaced verbatim and the card's owning list is rewritten. No
// network. Applying the same sequences twice is a no-op by construction.
func (s *BoardService) OptimisticMoveCard(cardID, sourceListID, targetListID string, sourceIDs, targetIDs []string) {
	s.store.ReorderCards(sourceListID, sourceIDs)
	if targetListID != sourceListID {
		s.store.ReorderCards(targetListID, targetIDs)
	}
	s.store.SetCardList(cardID, targetListID)
}

// CommitMoveCard confirms the final drag position with the server. On
// failure the optimistic order is deliberately left in place; only the
// error is recorded for the UI to surface.
func (s *BoardService) CommitMoveCard(ctx context.Context, cardID, targetListID string, position float64) error {
	s.setStatus(cardID, StatePending, "")
	c, err := s.api.MoveCard(ctx, cardID, targetListID, position)
	if err != nil {
		s.fail(cardID, "move card", err)
		return err
	}
	s.store.UpsertCard(c)
	s.setStatus(cardID, StateSucceeded, "")
	return nil
}

// --- lists ---

func (s *BoardService) CreateList(ctx context.Context, boardID, title string) (model.List, error) {
	key := CreateKey(boardID)
	s.setStatus(key, StatePending, "")
	position := float64(len(s.store.ListIDs(boardID)))
	l, err := s.api.CreateList(ctx, boardID, title, position)
	if err != nil {
		s.fail(key, "create list", err)
		return model.List{}, err
	}
	s.store.UpsertList(l)
	s.setStatus(key, StateSucceeded, "")
	return l, nil
}

func (s *BoardService) UpdateList(ctx context.Context, id string, patch gateway.ListPatch) (model.List, error) {
	s.setStatus(id, StatePending, "")
	l, err := s.api.UpdateList(ctx, id, patch)
	if err != nil {
		s.fail(id, "update list", err)
		return model.List{}, err
	}
	s.store.UpsertList(l)
	s.setStatus(id, StateSucceeded, "")
	return l, nil
}

func (s *BoardService) DeleteList(ctx context.Context, id string) error {
	s.setStatus(id, StatePending, "")
	if err := s.api.DeleteList(ctx, id); err != nil {
		s.fail(id, "delete list", err)
		return err
	}
	s.store.RemoveList(id)
	s.setStatus(id, StateSucceeded, "")
	return nil
}

// OptimisticMoveLists applies a list reorder preview for a board.
func (s *BoardService) OptimisticMoveLists(boardID string, orderedIDs []string) {
	s.store.ReorderLists(boardID, orderedIDs)
}

// CommitMoveList confirms a list's final position. Same no-rollback policy
// as card moves.
func (s *BoardService) CommitMoveList(ctx context.Context, listID string, position float64) error {
	s.setStatus(listID, StatePending, "")
	l, err := s.api.UpdateList(ctx, listID, gateway.ListPatch{Position: &position})
	if err != nil {
		s.fail(listID, "move list", err)
		return err
	}
	s.store.UpsertList(l)
	s.setStatus(listID, StateSucceeded, "")
	return nil
}

// fail records a failed action without touching entity state.
func (s *BoardService) fail(key, action string, err error) {
	msg := gateway.FallbackMessage
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Error()
	}
	logs.Error().Str("action", action).Str("key", key).Err(err).Msg("request failed")
	s.setStatus(key, StateFailed, msg)
}
