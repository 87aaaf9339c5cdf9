package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"epitrello/internal/gateway"
	"epitrello/internal/model"
	"epitrello/internal/store"
)

// fakeAPI answers gateway calls from canned data and records move commits.
type fakeAPI struct {
	board model.Board
	lists []model.List
	cards map[string][]model.Card

	moveErr    error
	movedCard  string
	movedList  string
	movedPos   float64
	moveResult model.Card
}

func (f *fakeAPI) Board(ctx context.Context, id string) (model.Board, error) {
	return f.board, nil
}

func (f *fakeAPI) Lists(ctx context.Context, boardID string) ([]model.List, error) {
	return f.lists, nil
}

func (f *fakeAPI) CreateList(ctx context.Context, boardID, title string, position float64) (model.List, error) {
	return model.List{ID: "l-new", BoardID: boardID, Title: title, Position: position}, nil
}

func (f *fakeAPI) UpdateList(ctx context.Context, id string, patch gateway.ListPatch) (model.List, error) {
	l := model.List{ID: id, BoardID: f.board.ID}
	if patch.Position != nil {
		l.Position = *patch.Position
	}
	return l, nil
}

func (f *fakeAPI) DeleteList(ctx context.Context, id string) error { return nil }

func (f *fakeAPI) Cards(ctx context.Context, listID string) ([]model.Card, error) {
	return f.cards[listID], nil
}

func (f *fakeAPI) CreateCard(ctx context.Context, listID, title, description string, position float64) (model.Card, error) {
	return model.Card{ID: "c-new", ListID: listID, Title: title, Description: description, Position: position}, nil
}

func (f *fakeAPI) UpdateCard(ctx context.Context, id string, patch gateway.CardPatch) (model.Card, error) {
	c := model.Card{ID: id}
	if patch.List != nil {
		c.ListID = *patch.List
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Position != nil {
		c.Position = *patch.Position
	}
	return c, nil
}

func (f *fakeAPI) MoveCard(ctx context.Context, id, targetListID string, position float64) (model.Card, error) {
	f.movedCard, f.movedList, f.movedPos = id, targetListID, position
	if f.moveErr != nil {
		return model.Card{}, f.moveErr
	}
	if f.moveResult.ID != "" {
		return f.moveResult, nil
	}
	return model.Card{ID: id, ListID: targetListID, Position: position}, nil
}

func (f *fakeAPI) DeleteCard(ctx context.Context, id string) error { return nil }

func newTestService(api API) *BoardService {
	st := store.New()
	st.UpsertBoard(model.Board{ID: "b1"})
	st.UpsertList(model.List{ID: "l1", BoardID: "b1", Position: 0})
	st.UpsertList(model.List{ID: "l2", BoardID: "b1", Position: 1})
	st.UpsertCard(model.Card{ID: "c1", ListID: "l1", Position: 0})
	st.UpsertCard(model.Card{ID: "c2", ListID: "l1", Position: 1})
	st.UpsertCard(model.Card{ID: "c3", ListID: "l2", Position: 0})
	return New(st, api)
}

func TestOptimisticMoveTransfersParentage(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	svc.OptimisticMoveCard("c1", "l1", "l2", []string{"c2"}, []string{"c3", "c1"})

	st := svc.Store()
	if got := st.CardIDs("l1"); !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("source list: got %v, want [c2]", got)
	}
	if got := st.CardIDs("l2"); !reflect.DeepEqual(got, []string{"c3", "c1"}) {
		t.Errorf("target list: got %v, want [c3 c1]", got)
	}
	c, _ := st.Card("c1")
	if c.ListID != "l2" {
		t.Errorf("card parent: got %s, want l2", c.ListID)
	}
	if c.Position != 1 {
		t.Errorf("card position: got %v, want 1", c.Position)
	}
}

func TestOptimisticMoveSameListSkipsSecondReorder(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	svc.OptimisticMoveCard("c2", "l1", "l1", []string{"c2", "c1"}, nil)

	if got := svc.Store().CardIDs("l1"); !reflect.DeepEqual(got, []string{"c2", "c1"}) {
		t.Errorf("got %v, want [c2 c1]", got)
	}
}

func TestCommitMoveCardUpsertsCanonicalCard(t *testing.T) {
	api := &fakeAPI{moveResult: model.Card{ID: "c1", ListID: "l2", Position: 7}}
	svc := newTestService(api)
	svc.OptimisticMoveCard("c1", "l1", "l2", []string{"c2"}, []string{"c3", "c1"})

	if err := svc.CommitMoveCard(context.Background(), "c1", "l2", 1); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if api.movedCard != "c1" || api.movedList != "l2" || api.movedPos != 1 {
		t.Errorf("commit sent (%s, %s, %v)", api.movedCard, api.movedList, api.movedPos)
	}
	c, _ := svc.Store().Card("c1")
	if c.Position != 7 {
		t.Errorf("canonical position not applied: got %v", c.Position)
	}
	if got := svc.Status("c1"); got.State != StateSucceeded {
		t.Errorf("status: got %v, want succeeded", got.State)
	}
}

func TestFailedCommitKeepsOptimisticOrder(t *testing.T) {
	api := &fakeAPI{moveErr: &gateway.APIError{StatusCode: 403, Message: "not a member"}}
	svc := newTestService(api)
	svc.OptimisticMoveCard("c1", "l1", "l2", []string{"c2"}, []string{"c3", "c1"})

	err := svc.CommitMoveCard(context.Background(), "c1", "l2", 1)
	if err == nil {
		t.Fatal("expected commit error")
	}

	// No rollback: the preview stays on screen and only the status flips.
	st := svc.Store()
	if got := st.CardIDs("l2"); !reflect.DeepEqual(got, []string{"c3", "c1"}) {
		t.Errorf("optimistic order was rolled back: %v", got)
	}
	c, _ := st.Card("c1")
	if c.ListID != "l2" {
		t.Errorf("card parent was rolled back: %s", c.ListID)
	}
	status := svc.Status("c1")
	if status.State != StateFailed {
		t.Fatalf("status: got %v, want failed", status.State)
	}
	if status.Err != "not a member" {
		t.Errorf("status message: got %q", status.Err)
	}
}

func TestFailureMessageFallsBack(t *testing.T) {
	api := &fakeAPI{moveErr: errors.New("dial tcp: connection refused")}
	svc := newTestService(api)

	if err := svc.CommitMoveCard(context.Background(), "c1", "l2", 0); err == nil {
		t.Fatal("expected commit error")
	}

	if got := svc.Status("c1").Err; got != gateway.FallbackMessage {
		t.Errorf("status message: got %q, want fallback", got)
	}
}

func TestCreateCardAppendsAtListEnd(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	c, err := svc.CreateCard(context.Background(), "l1", "third", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if c.Position != 2 {
		t.Errorf("position: got %v, want 2", c.Position)
	}
	if got := svc.Store().CardIDs("l1"); !reflect.DeepEqual(got, []string{"c1", "c2", "c-new"}) {
		t.Errorf("index: got %v", got)
	}
	if got := svc.Status(CreateKey("l1")); got.State != StateSucceeded {
		t.Errorf("status: got %v", got.State)
	}
}

func TestLoadBoardReplacesStaleState(t *testing.T) {
	api := &fakeAPI{
		board: model.Board{ID: "b1", Title: "fresh"},
		lists: []model.List{{ID: "l1", BoardID: "b1", Position: 0}},
		cards: map[string][]model.Card{
			"l1": {{ID: "c9", ListID: "l1", Position: 0}},
		},
	}
	svc := newTestService(api)

	if err := svc.LoadBoard(context.Background(), "b1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	st := svc.Store()
	if _, ok := st.List("l2"); ok {
		t.Error("list absent from fetch still present")
	}
	if got := st.CardIDs("l1"); !reflect.DeepEqual(got, []string{"c9"}) {
		t.Errorf("cards not replaced: %v", got)
	}
	if _, ok := st.Card("c1"); ok {
		t.Error("stale card still present")
	}
}

func TestClearStatusResetsToIdle(t *testing.T) {
	api := &fakeAPI{moveErr: errors.New("boom")}
	svc := newTestService(api)
	_ = svc.CommitMoveCard(context.Background(), "c1", "l2", 0)

	svc.ClearStatus("c1")

	if got := svc.Status("c1"); got.State != StateIdle {
		t.Errorf("status after clear: got %v, want idle", got.State)
	}
}

func TestOptimisticMoveListsRewritesBoardOrder(t *testing.T) {
	svc := newTestService(&fakeAPI{})

	svc.OptimisticMoveLists("b1", []string{"l2", "l1"})

	if got := svc.Store().ListIDs("b1"); !reflect.DeepEqual(got, []string{"l2", "l1"}) {
		t.Errorf("got %v, want [l2 l1]", got)
	}
	l, _ := svc.Store().List("l2")
	if l.Position != 0 {
		t.Errorf("position not rewritten: %v", l.Position)
	}
}
