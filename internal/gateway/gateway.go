// Package gateway is the REST client for the EpiTrello API. It returns
// server-canonical entities; all reconciliation against local state happens
// in the service layer.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"epitrello/internal/model"
)

// FallbackMessage is surfaced when the server gives no usable error body.
const FallbackMessage = "Unable to complete the request"

// ErrNotFound matches 404 responses via errors.Is, so callers can tell a
// deleted entity apart from other failures.
var ErrNotFound = errors.New("not found")

// APIError carries the human-readable message extracted from a non-2xx
// response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return FallbackMessage
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Me returns the authenticated user, primarily for the realtime actor
// filter.
func (c *Client) Me(ctx context.Context) (model.Member, error) {
	var resp struct {
		User model.Member `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &resp)
	return resp.User, err
}

// --- boards ---

func (c *Client) Boards(ctx context.Context) ([]model.Board, error) {
	var resp struct {
		Boards []model.Board `json:"boards"`
	}
	if err := c.do(ctx, http.MethodGet, "/boards", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Boards, nil
}

func (c *Client) Board(ctx context.Context, id string) (model.Board, error) {
	var resp struct {
		Board model.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodGet, "/boards/"+id, nil, &resp)
	return resp.Board, err
}

type BoardFields struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Background  *model.Background `json:"background,omitempty"`
}

func (c *Client) CreateBoard(ctx context.Context, fields BoardFields) (model.Board, error) {
	var resp struct {
		Board model.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodPost, "/boards", fields, &resp)
	return resp.Board, err
}

type BoardPatch struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Background  *model.Background `json:"background,omitempty"`
}

func (c *Client) UpdateBoard(ctx context.Context, id string, patch BoardPatch) (model.Board, error) {
	var resp struct {
		Board model.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodPatch, "/boards/"+id, patch, &resp)
	return resp.Board, err
}

func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+id, nil, nil)
}

// --- membership ---

func (c *Client) AddMember(ctx context.Context, boardID, userID string, role model.Role) (model.Board, error) {
	var resp struct {
		Board model.Board `json:"board"`
	}
	body := map[string]any{"user": userID, "role": role}
	err := c.do(ctx, http.MethodPost, "/boards/"+boardID+"/members", body, &resp)
	return resp.Board, err
}

func (c *Client) UpdateMember(ctx context.Context, boardID, userID string, role model.Role) (model.Board, error) {
	var resp struct {
		Board model.Board `json:"board"`
	}
	body := map[string]any{"role": role}
	err := c.do(ctx, http.MethodPatch, "/boards/"+boardID+"/members/"+userID, body, &resp)
	return resp.Board, err
}

func (c *Client) RemoveMember(ctx context.Context, boardID, userID string) (model.Board, error) {
	var resp struct {
		Board model.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodDelete, "/boards/"+boardID+"/members/"+userID, nil, &resp)
	return resp.Board, err
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.Member, error) {
	var resp struct {
		Users []model.Member `json:"users"`
	}
	path := "/users/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// --- lists ---

func (c *Client) Lists(ctx context.Context, boardID string) ([]model.List, error) {
	var resp struct {
		Lists []model.List `json:"lists"`
	}
	path := "/lists?board=" + url.QueryEscape(boardID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

func (c *Client) CreateList(ctx context.Context, boardID, title string, position float64) (model.List, error) {
	var resp struct {
		List model.List `json:"list"`
	}
	body := map[string]any{"board": boardID, "title": title, "position": position}
	err := c.do(ctx, http.MethodPost, "/lists", body, &resp)
	return resp.List, err
}

type ListPatch struct {
	Title    *string  `json:"title,omitempty"`
	Position *float64 `json:"position,omitempty"`
}

func (c *Client) UpdateList(ctx context.Context, id string, patch ListPatch) (model.List, error) {
	var resp struct {
		List model.List `json:"list"`
	}
	err := c.do(ctx, http.MethodPatch, "/lists/"+id, patch, &resp)
	return resp.List, err
}

func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/lists/"+id, nil, nil)
}

// --- cards ---

func (c *Client) Cards(ctx context.Context, listID string) ([]model.Card, error) {
	var resp struct {
		Cards []model.Card `json:"cards"`
	}
	path := "/cards?list=" + url.QueryEscape(listID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

func (c *Client) CreateCard(ctx context.Context, listID, title, description string, position float64) (model.Card, error) {
	var resp struct {
		Card model.Card `json:"card"`
	}
	body := map[string]any{
		"list":        listID,
		"title":       title,
		"description": description,
		"position":    position,
	}
	err := c.do(ctx, http.MethodPost, "/cards", body, &resp)
	return resp.Card, err
}

// CardPatch is a partial update. A non-nil List together with Position
// signals a move; the server answers with the canonical card either way.
type CardPatch struct {
	Title           *string               `json:"title,omitempty"`
	Description     *string               `json:"description,omitempty"`
	DueDate         *time.Time            `json:"dueDate,omitempty"`
	Labels          []model.Label         `json:"labels,omitempty"`
	AssignedMembers []string              `json:"assignedMembers,omitempty"`
	Checklist       []model.ChecklistItem `json:"checklist,omitempty"`
	List            *string               `json:"list,omitempty"`
	Position        *float64              `json:"position,omitempty"`
}

func (c *Client) UpdateCard(ctx context.Context, id string, patch CardPatch) (model.Card, error) {
	var resp struct {
		Card model.Card `json:"card"`
	}
	err := c.do(ctx, http.MethodPatch, "/cards/"+id, patch, &resp)
	return resp.Card, err
}

// MoveCard commits a drag result: target list plus the numeric position the
// card landed on. The server reassigns Position canonically.
func (c *Client) MoveCard(ctx context.Context, id, targetListID string, position float64) (model.Card, error) {
	return c.UpdateCard(ctx, id, CardPatch{List: &targetListID, Position: &position})
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+id, nil, nil)
}

// --- plumbing ---

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: extractMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage pulls a human-readable string from an error body shaped
// {"message": ...} or {"error": ...}. Empty when neither is present.
func extractMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Err
}
