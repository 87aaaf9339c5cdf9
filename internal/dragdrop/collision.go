// Package dragdrop computes drop targets from drag geometry and tracks the
// in-flight reordering preview of a drag gesture.
package dragdrop

import (
	"math"
	"sort"
)

// Kind distinguishes droppable regions: a card slot or a list container.
type Kind int

const (
	KindCard Kind = iota
	KindList
)

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (r Rect) corners() [4][2]float64 {
	return [4][2]float64{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X, r.Y + r.H},
		{r.X + r.W, r.Y + r.H},
	}
}

// Droppable is one candidate drop region for a drag-over tick. For card
// slots, ListID names the owning list; for list containers, ID is the list
// id itself.
type Droppable struct {
	ID     string
	Kind   Kind
	ListID string
	Rect   Rect
}

// Candidate is a ranked collision result. Lower score ranks first except
// where noted.
type Candidate struct {
	ID    string
	Score float64
}

// rank orders candidates by score then id, so identical geometry always
// yields the same first candidate.
func rank(cands []Candidate) []Candidate {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score < cands[j].Score
		}
		return cands[i].ID < cands[j].ID
	})
	return cands
}

// ClosestCenter ranks droppables by center-to-center distance from the
// active rect. Used for list dragging, where only list slots are legal.
func ClosestCenter(active Rect, droppables []Droppable) []Candidate {
	ax, ay := active.Center()
	var out []Candidate
	for _, d := range droppables {
		cx, cy := d.Rect.Center()
		out = append(out, Candidate{ID: d.ID, Score: math.Hypot(cx-ax, cy-ay)})
	}
	return rank(out)
}

// PointerWithin returns the droppables whose rect contains the pointer,
// ranked by pointer-to-center distance.
func PointerWithin(px, py float64, droppables []Droppable) []Candidate {
	var out []Candidate
	for _, d := range droppables {
		if !d.Rect.Contains(px, py) {
			continue
		}
		cx, cy := d.Rect.Center()
		out = append(out, Candidate{ID: d.ID, Score: math.Hypot(cx-px, cy-py)})
	}
	return rank(out)
}

// IntersectingRects returns the droppables whose rect overlaps the active
// rect, largest overlap area first.
func IntersectingRects(active Rect, droppables []Droppable) []Candidate {
	var out []Candidate
	for _, d := range droppables {
		if !active.Intersects(d.Rect) {
			continue
		}
		w := math.Min(active.X+active.W, d.Rect.X+d.Rect.W) - math.Max(active.X, d.Rect.X)
		h := math.Min(active.Y+active.H, d.Rect.Y+d.Rect.H) - math.Max(active.Y, d.Rect.Y)
		// Negate so the shared ascending rank puts the biggest overlap first.
		out = append(out, Candidate{ID: d.ID, Score: -(w * h)})
	}
	return rank(out)
}

// ClosestCorners ranks droppables by the minimum distance between any corner
// of the active rect and any corner of the candidate rect.
func ClosestCorners(active Rect, droppables []Droppable) []Candidate {
	ac := active.corners()
	var out []Candidate
	for _, d := range droppables {
		dc := d.Rect.corners()
		best := math.Inf(1)
		for _, a := range ac {
			for _, b := range dc {
				if dist := math.Hypot(a[0]-b[0], a[1]-b[1]); dist < best {
					best = dist
				}
			}
		}
		out = append(out, Candidate{ID: d.ID, Score: best})
	}
	return rank(out)
}

// Target is the resolved drop location for one drag-over tick. CardID names
// the sibling the dragged card should land before; empty means end of list.
type Target struct {
	ListID string
	CardID string
}

// ResolveCardTarget picks the drop target for a dragged card: pointer
// containment wins, rectangle intersection is the fallback. Landing on a
// list container (empty list space) narrows to the nearest card in that
// list by corner distance, or the list end when it has no cards.
func ResolveCardTarget(px, py float64, active Rect, droppables []Droppable) (Target, bool) {
	cands := PointerWithin(px, py, droppables)
	if len(cands) == 0 {
		cands = IntersectingRects(active, droppables)
	}
	if len(cands) == 0 {
		return Target{}, false
	}

	first, ok := findDroppable(droppables, cands[0].ID)
	if !ok {
		return Target{}, false
	}
	if first.Kind == KindCard {
		return Target{ListID: first.ListID, CardID: first.ID}, true
	}

	var siblings []Droppable
	for _, d := range droppables {
		if d.Kind == KindCard && d.ListID == first.ID {
			siblings = append(siblings, d)
		}
	}
	if len(siblings) == 0 {
		return Target{ListID: first.ID}, true
	}
	nearest := ClosestCorners(active, siblings)
	return Target{ListID: first.ID, CardID: nearest[0].ID}, true
}

// ResolveListTarget picks the reorder neighbor for a dragged list. Lists
// only ever reorder among themselves.
func ResolveListTarget(active Rect, droppables []Droppable) (string, bool) {
	var lists []Droppable
	for _, d := range droppables {
		if d.Kind == KindList {
			lists = append(lists, d)
		}
	}
	cands := ClosestCenter(active, lists)
	if len(cands) == 0 {
		return "", false
	}
	return cands[0].ID, true
}

func findDroppable(droppables []Droppable, id string) (Droppable, bool) {
	for _, d := range droppables {
		if d.ID == id {
			return d, true
		}
	}
	return Droppable{}, false
}
