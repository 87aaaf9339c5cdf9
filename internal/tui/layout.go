package tui

import (
	"epitrello/internal/dragdrop"
	"epitrello/internal/model"
)

// The board view and the drag engine share one coordinate space: the cell
// grid the columns render into. Each column and each card gets a rect there,
// and move mode steers a virtual pointer across those rects, so target
// resolution works exactly as it would for a real pointer.

func columnRect(colIdx, cardCount int) dragdrop.Rect {
	h := float64(columnHeaderLines + cardCount*cardCellHeight + 2)
	if h < 20 {
		h = 20
	}
	return dragdrop.Rect{
		X: float64(colIdx * (columnWidth + columnGap)),
		Y: 0,
		W: columnWidth,
		H: h,
	}
}

func cardRect(colIdx, cardIdx int) dragdrop.Rect {
	col := columnRect(colIdx, 0)
	return dragdrop.Rect{
		X: col.X + 1,
		Y: float64(columnHeaderLines + cardIdx*cardCellHeight),
		W: columnWidth - 2,
		H: cardCellHeight,
	}
}

// buildDroppables maps the current board state onto drop regions: one list
// container per column plus one slot per card. The dragged card is excluded;
// it is the thing being placed, not a target.
func buildDroppables(lists []model.List, cardsOf func(listID string) []model.Card, draggedID string) []dragdrop.Droppable {
	var out []dragdrop.Droppable
	for colIdx, l := range lists {
		cards := cardsOf(l.ID)
		out = append(out, dragdrop.Droppable{
			ID:   l.ID,
			Kind: dragdrop.KindList,
			Rect: columnRect(colIdx, len(cards)),
		})
		for cardIdx, c := range cards {
			if c.ID == draggedID {
				continue
			}
			out = append(out, dragdrop.Droppable{
				ID:     c.ID,
				Kind:   dragdrop.KindCard,
				ListID: l.ID,
				Rect:   cardRect(colIdx, cardIdx),
			})
		}
	}
	return out
}
