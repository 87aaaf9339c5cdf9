package model

import "time"

// Role is the membership role a user holds on a board.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// BackgroundColor and BackgroundImage are the two board background variants.
const (
	BackgroundColor = "color"
	BackgroundImage = "image"
)

type Background struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
}

type Board struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Background  Background `json:"background"`
	OwnerID     string     `json:"owner"`
	// Role is the current viewer's role on this board.
	Role      Role      `json:"role,omitempty"`
	Members   []Member  `json:"members,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type List struct {
	ID      string `json:"id"`
	BoardID string `json:"board"`
	Title   string `json:"title"`
	// Position orders lists within a board. Relative order is what matters;
	// values need not be contiguous. Ties break on id.
	Position float64 `json:"position"`
}

type Label struct {
	Color string `json:"color"`
	Text  string `json:"text,omitempty"`
}

type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Activity struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Card struct {
	ID    string `json:"id"`
	// ListID is the owning list. Mutable: cards move between lists.
	ListID          string          `json:"list"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Position        float64         `json:"position"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
	Labels          []Label         `json:"labels,omitempty"`
	AssignedMembers []string        `json:"assignedMembers,omitempty"`
	Checklist       []ChecklistItem `json:"checklist,omitempty"`
	Comments        []Comment       `json:"comments,omitempty"`
	Activity        []Activity      `json:"activity,omitempty"`
}

// ChecklistProgress returns done and total counts for the card's checklist.
func (c Card) ChecklistProgress() (done, total int) {
	for _, item := range c.Checklist {
		total++
		if item.Completed {
			done++
		}
	}
	return done, total
}

// HasMember reports whether the given user is assigned to the card.
func (c Card) HasMember(userID string) bool {
	for _, id := range c.AssignedMembers {
		if id == userID {
			return true
		}
	}
	return false
}
