package dragdrop

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"epitrello/internal/gateway"
	"epitrello/internal/model"
	"epitrello/internal/service"
	"epitrello/internal/store"
)

// commitRecorder satisfies service.API; only the move paths matter here.
type commitRecorder struct {
	cardCommits []cardCommit
	listCommits []listCommit
	moveErr     error
}

type cardCommit struct {
	id, listID string
	position   float64
}

type listCommit struct {
	id       string
	position float64
}

func (r *commitRecorder) Board(ctx context.Context, id string) (model.Board, error) {
	return model.Board{}, nil
}

func (r *commitRecorder) Lists(ctx context.Context, boardID string) ([]model.List, error) {
	return nil, nil
}

func (r *commitRecorder) CreateList(ctx context.Context, boardID, title string, position float64) (model.List, error) {
	return model.List{}, nil
}

func (r *commitRecorder) UpdateList(ctx context.Context, id string, patch gateway.ListPatch) (model.List, error) {
	if patch.Position != nil {
		r.listCommits = append(r.listCommits, listCommit{id: id, position: *patch.Position})
	}
	return model.List{ID: id, Position: *patch.Position}, nil
}

func (r *commitRecorder) DeleteList(ctx context.Context, id string) error { return nil }

func (r *commitRecorder) Cards(ctx context.Context, listID string) ([]model.Card, error) {
	return nil, nil
}

func (r *commitRecorder) CreateCard(ctx context.Context, listID, title, description string, position float64) (model.Card, error) {
	return model.Card{}, nil
}

func (r *commitRecorder) UpdateCard(ctx context.Context, id string, patch gateway.CardPatch) (model.Card, error) {
	return model.Card{ID: id}, nil
}

func (r *commitRecorder) MoveCard(ctx context.Context, id, targetListID string, position float64) (model.Card, error) {
	r.cardCommits = append(r.cardCommits, cardCommit{id: id, listID: targetListID, position: position})
	if r.moveErr != nil {
		return model.Card{}, r.moveErr
	}
	return model.Card{ID: id, ListID: targetListID, Position: position}, nil
}

func (r *commitRecorder) DeleteCard(ctx context.Context, id string) error { return nil }

func newBoard(api service.API) *service.BoardService {
	st := store.New()
	st.UpsertBoard(model.Board{ID: "b1"})
	st.UpsertList(model.List{ID: "todo", BoardID: "b1", Position: 0})
	st.UpsertList(model.List{ID: "doing", BoardID: "b1", Position: 1})
	st.UpsertCard(model.Card{ID: "c1", ListID: "todo", Position: 0})
	st.UpsertCard(model.Card{ID: "c2", ListID: "todo", Position: 1})
	st.UpsertCard(model.Card{ID: "c3", ListID: "todo", Position: 2})
	st.UpsertCard(model.Card{ID: "c4", ListID: "doing", Position: 0})
	return service.New(st, api)
}

func TestCrossListDragSplicesBeforeTarget(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c2")

	sess.Over(Target{ListID: "doing", CardID: "c4"})

	st := svc.Store()
	if got := st.CardIDs("todo"); !reflect.DeepEqual(got, []string{"c1", "c3"}) {
		t.Errorf("source: got %v, want [c1 c3]", got)
	}
	if got := st.CardIDs("doing"); !reflect.DeepEqual(got, []string{"c2", "c4"}) {
		t.Errorf("target: got %v, want [c2 c4]", got)
	}
	c, _ := st.Card("c2")
	if c.ListID != "doing" {
		t.Errorf("card parent: got %s, want doing", c.ListID)
	}
}

func TestCrossListDragToEmptySpaceAppends(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c1")

	sess.Over(Target{ListID: "doing"})

	if got := svc.Store().CardIDs("doing"); !reflect.DeepEqual(got, []string{"c4", "c1"}) {
		t.Errorf("target: got %v, want [c4 c1]", got)
	}
}

func TestSameListDragMovesToSiblingIndex(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c3")

	sess.Over(Target{ListID: "todo", CardID: "c1"})

	if got := svc.Store().CardIDs("todo"); !reflect.DeepEqual(got, []string{"c3", "c1", "c2"}) {
		t.Errorf("got %v, want [c3 c1 c2]", got)
	}
}

func TestSameListDragOverEmptySpaceIsNoop(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c1")

	sess.Over(Target{ListID: "todo"})

	if got := svc.Store().CardIDs("todo"); !reflect.DeepEqual(got, []string{"c1", "c2", "c3"}) {
		t.Errorf("order changed: %v", got)
	}
	if committed, _ := sess.End(context.Background()); committed {
		t.Error("no-op gesture produced a commit")
	}
	if len(api.cardCommits) != 0 {
		t.Errorf("server was called: %v", api.cardCommits)
	}
}

func TestMultiTickDragCommitsFinalPositionOnly(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c1")

	// Wander within todo first, then settle after c4 in doing.
	sess.Over(Target{ListID: "todo", CardID: "c3"})
	sess.Over(Target{ListID: "doing"})

	committed, err := sess.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !committed {
		t.Fatal("expected a commit")
	}
	want := []cardCommit{{id: "c1", listID: "doing", position: 1}}
	if !reflect.DeepEqual(api.cardCommits, want) {
		t.Errorf("commits: got %v, want %v", api.cardCommits, want)
	}
}

func TestDragBackToOriginStillCommits(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c1")

	sess.Over(Target{ListID: "doing", CardID: "c4"})
	sess.Over(Target{ListID: "todo", CardID: "c2"})

	committed, err := sess.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !committed {
		t.Fatal("expected a commit: previews were applied")
	}
	if got := svc.Store().CardIDs("todo"); !reflect.DeepEqual(got, []string{"c1", "c2", "c3"}) {
		t.Errorf("final order: got %v", got)
	}
}

func TestFailedEndLeavesPreviewInPlace(t *testing.T) {
	api := &commitRecorder{moveErr: errors.New("server down")}
	svc := newBoard(api)
	sess := StartCard(svc, "c2")
	sess.Over(Target{ListID: "doing", CardID: "c4"})

	committed, err := sess.End(context.Background())
	if !committed || err == nil {
		t.Fatalf("expected attempted commit with error, got committed=%v err=%v", committed, err)
	}

	if got := svc.Store().CardIDs("doing"); !reflect.DeepEqual(got, []string{"c2", "c4"}) {
		t.Errorf("preview rolled back: %v", got)
	}
	if svc.Status("c2").State != service.StateFailed {
		t.Error("failure not recorded")
	}
}

func TestOverDraggedCardItselfIsIgnored(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartCard(svc, "c2")

	sess.Over(Target{ListID: "todo", CardID: "c2"})

	if got := svc.Store().CardIDs("todo"); !reflect.DeepEqual(got, []string{"c1", "c2", "c3"}) {
		t.Errorf("order changed: %v", got)
	}
}

func TestOriginListSurvivesCrossListTicks(t *testing.T) {
	svc := newBoard(&commitRecorder{})
	sess := StartCard(svc, "c1")

	sess.Over(Target{ListID: "doing", CardID: "c4"})

	if sess.OriginListID() != "todo" {
		t.Errorf("origin: got %s, want todo", sess.OriginListID())
	}
	if sess.DraggedID() != "c1" {
		t.Errorf("dragged: got %s, want c1", sess.DraggedID())
	}
}

func TestListDragReordersAndCommits(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartList(svc, "b1", "doing")

	sess.Over("todo")

	if got := svc.Store().ListIDs("b1"); !reflect.DeepEqual(got, []string{"doing", "todo"}) {
		t.Errorf("order: got %v, want [doing todo]", got)
	}

	committed, err := sess.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !committed {
		t.Fatal("expected a commit")
	}
	want := []listCommit{{id: "doing", position: 0}}
	if !reflect.DeepEqual(api.listCommits, want) {
		t.Errorf("commits: got %v, want %v", api.listCommits, want)
	}
}

func TestListDragWithoutMovementSkipsCommit(t *testing.T) {
	api := &commitRecorder{}
	svc := newBoard(api)
	sess := StartList(svc, "b1", "todo")

	sess.Over("todo")

	if committed, _ := sess.End(context.Background()); committed {
		t.Error("stationary list drag produced a commit")
	}
}
