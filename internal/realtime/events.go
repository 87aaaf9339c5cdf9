// Package realtime decodes server-pushed events and folds them into the
// local store.
package realtime

import (
	"encoding/json"
	"fmt"

	"epitrello/internal/model"
)

// Event is the closed set of push events. Every inbound frame decodes to
// exactly one variant; the merger's type switch is exhaustive over them.
type Event interface {
	Actor() string
	event()
}

type actor struct {
	UserID string `json:"userId"`
}

func (a actor) Actor() string { return a.UserID }
func (actor) event()          {}

type BoardUpdated struct {
	actor
	Board model.Board `json:"board"`
}

type BoardDeleted struct {
	actor
	BoardID string `json:"id"`
}

type ListCreated struct {
	actor
	List model.List `json:"list"`
}

type ListUpdated struct {
	actor
	List model.List `json:"list"`
}

type ListDeleted struct {
	actor
	ListID string `json:"id"`
}

// ListMoved carries the canonical list plus the board's full list order so
// sibling positions stay consistent after the merge.
type ListMoved struct {
	actor
	List      model.List `json:"list"`
	ListOrder []string   `json:"listOrder"`
}

type CardCreated struct {
	actor
	Card model.Card `json:"card"`
}

type CardUpdated struct {
	actor
	Card model.Card `json:"card"`
}

type CardDeleted struct {
	actor
	CardID string `json:"id"`
}

// CardMoved carries the canonical card plus the target list's full card
// order.
type CardMoved struct {
	actor
	Card      model.Card `json:"card"`
	CardOrder []string   `json:"cardOrder"`
}

type MemberAdded struct {
	actor
	BoardID string       `json:"board"`
	Member  model.Member `json:"member"`
}

type MemberUpdated struct {
	actor
	BoardID string       `json:"board"`
	Member  model.Member `json:"member"`
}

type MemberRemoved struct {
	actor
	BoardID  string `json:"board"`
	MemberID string `json:"member"`
}

type UserJoined struct {
	actor
	BoardID string `json:"board"`
}

type UserLeft struct {
	actor
	BoardID string `json:"board"`
}

type envelope struct {
	Event   string          `json:"event"`
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses one wire frame into its event variant. Unknown event names
// are an error; the transport logs and skips them.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var ev Event
	switch env.Event {
	case "board:updated":
		ev = &BoardUpdated{}
	case "board:deleted":
		ev = &BoardDeleted{}
	case "list:created":
		ev = &ListCreated{}
	case "list:updated":
		ev = &ListUpdated{}
	case "list:deleted":
		ev = &ListDeleted{}
	case "list:moved":
		ev = &ListMoved{}
	case "card:created":
		ev = &CardCreated{}
	case "card:updated":
		ev = &CardUpdated{}
	case "card:deleted":
		ev = &CardDeleted{}
	case "card:moved":
		ev = &CardMoved{}
	case "member:added":
		ev = &MemberAdded{}
	case "member:updated":
		ev = &MemberUpdated{}
	case "member:removed":
		ev = &MemberRemoved{}
	case "user:joined":
		ev = &UserJoined{}
	case "user:left":
		ev = &UserLeft{}
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, ev); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
	}
	setActor(ev, env.UserID)
	return ev, nil
}

func setActor(ev Event, userID string) {
	switch e := ev.(type) {
	case *BoardUpdated:
		e.UserID = userID
	case *BoardDeleted:
		e.UserID = userID
	case *ListCreated:
		e.UserID = userID
	case *ListUpdated:
		e.UserID = userID
	case *ListDeleted:
		e.UserID = userID
	case *ListMoved:
		e.UserID = userID
	case *CardCreated:
		e.UserID = userID
	case *CardUpdated:
		e.UserID = userID
	case *CardDeleted:
		e.UserID = userID
	case *CardMoved:
		e.UserID = userID
	case *MemberAdded:
		e.UserID = userID
	case *MemberUpdated:
		e.UserID = userID
	case *MemberRemoved:
		e.UserID = userID
	case *UserJoined:
		e.UserID = userID
	case *UserLeft:
		e.UserID = userID
	}
}
