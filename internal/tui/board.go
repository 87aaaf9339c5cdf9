// Package tui renders one board as columns of cards and drives the sync
// engine from keyboard input. Move mode steers a virtual pointer through the
// same collision resolution a mouse drag would use.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"epitrello/internal/dragdrop"
	"epitrello/internal/model"
	"epitrello/internal/realtime"
	"epitrello/internal/service"
)

type boardMode int

const (
	boardModeNormal boardMode = iota
	boardModeMove
	boardModeListMove
	boardModeNewCard
	boardModeNewList
	boardModeConfirmDelete
	boardModeFilter
)

// Messages flowing back into Update from async work.
type (
	boardLoadedMsg struct{ err error }
	commitDoneMsg  struct {
		entityID string
		err      error
	}
	createDoneMsg struct {
		parentID string
		err      error
	}
	deleteDoneMsg struct {
		entityID string
		err      error
	}
	eventMsg        struct{ ev realtime.Event }
	socketClosedMsg struct{}
	exitBoardMsg    struct{ boardID string }
)

type BoardModel struct {
	svc       *service.BoardService
	merger    *realtime.Merger
	transport *realtime.Transport
	boardID   string
	exitCh    chan string

	mode         boardMode
	selectedCol  int
	selectedCard int
	width        int
	height       int
	errMsg       string
	message      string

	session     *dragdrop.Session
	listSession *dragdrop.ListSession
	pointerX    float64
	pointerY    float64

	titleInput   textinput.Model
	filterInput  textinput.Model
	filterQuery  string
	filterActive bool
}

func NewBoardModel(svc *service.BoardService, merger *realtime.Merger, transport *realtime.Transport, boardID string, exitCh chan string) BoardModel {
	return BoardModel{
		svc:       svc,
		merger:    merger,
		transport: transport,
		boardID:   boardID,
		exitCh:    exitCh,
	}
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.loadBoard(), m.waitForEvent())
}

func (m BoardModel) loadBoard() tea.Cmd {
	return func() tea.Msg {
		err := m.svc.LoadBoard(context.Background(), m.boardID)
		if err == nil && m.transport != nil {
			err = m.transport.JoinBoard(m.boardID)
		}
		return boardLoadedMsg{err: err}
	}
}

func (m BoardModel) waitForEvent() tea.Cmd {
	if m.transport == nil {
		return nil
	}
	ch := m.transport.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return socketClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// --- update ---

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m, nil

	case commitDoneMsg:
		if st := m.svc.Status(msg.entityID); st.State == service.StateFailed {
			m.errMsg = st.Err
		}
		return m, nil

	case createDoneMsg:
		if st := m.svc.Status(service.CreateKey(msg.parentID)); st.State == service.StateFailed {
			m.errMsg = st.Err
		} else {
			m.message = "Created"
		}
		return m, nil

	case deleteDoneMsg:
		if st := m.svc.Status(msg.entityID); st.State == service.StateFailed {
			m.errMsg = st.Err
		} else {
			m.message = "Deleted"
		}
		m.clampCursor()
		return m, nil

	case eventMsg:
		m.merger.Apply(msg.ev)
		select {
		case boardID := <-m.exitCh:
			if boardID == m.boardID {
				return m, tea.Quit
			}
		default:
		}
		m.clampCursor()
		return m, m.waitForEvent()

	case socketClosedMsg:
		m.errMsg = "realtime connection lost"
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case boardModeNormal:
			return m.updateNormal(msg)
		case boardModeMove:
			return m.updateMove(msg)
		case boardModeListMove:
			return m.updateListMove(msg)
		case boardModeNewCard, boardModeNewList:
			return m.updateTitleInput(msg)
		case boardModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case boardModeFilter:
			return m.updateFilter(msg)
		}
	}
	return m, nil
}

func (m BoardModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.errMsg = ""

	lists := m.lists()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.filterActive {
			m.filterQuery = ""
			m.filterActive = false
			m.selectedCard = 0
		}

	case "/":
		ti := textinput.New()
		ti.Placeholder = "filter..."
		ti.CharLimit = 100
		ti.Width = 40
		ti.SetValue(m.filterQuery)
		ti.Focus()
		m.filterInput = ti
		m.mode = boardModeFilter
		return m, textinput.Blink

	case "h", "left":
		if m.selectedCol > 0 {
			m.selectedCol--
			m.clampCursor()
		}

	case "l", "right":
		if m.selectedCol < len(lists)-1 {
			m.selectedCol++
			m.clampCursor()
		}

	case "j", "down":
		if m.selectedCard < len(m.visibleCards(m.selectedCol))-1 {
			m.selectedCard++
		}

	case "k", "up":
		if m.selectedCard > 0 {
			m.selectedCard--
		}

	case "m", " ":
		if card, ok := m.cardUnderCursor(); ok {
			m.session = dragdrop.StartCard(m.svc, card.ID)
			r := cardRect(m.selectedCol, m.selectedCard)
			m.pointerX, m.pointerY = r.Center()
			m.mode = boardModeMove
		}

	case "L":
		if m.selectedCol < len(lists) {
			m.listSession = dragdrop.StartList(m.svc, m.boardID, lists[m.selectedCol].ID)
			m.mode = boardModeListMove
		}

	case "n":
		if m.selectedCol < len(lists) {
			m.titleInput = newTitleInput("card title...")
			m.mode = boardModeNewCard
			return m, textinput.Blink
		}

	case "N":
		m.titleInput = newTitleInput("list title...")
		m.mode = boardModeNewList
		return m, textinput.Blink

	case "D":
		if _, ok := m.cardUnderCursor(); ok {
			m.mode = boardModeConfirmDelete
		}

	case "r":
		return m, m.loadBoard()
	}

	return m, nil
}

// updateMove steers the virtual pointer; every step is one drag-over tick
// resolved through the collision engine and previewed optimistically.
func (m BoardModel) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.pointerX -= columnWidth + columnGap
	case "l", "right":
		m.pointerX += columnWidth + columnGap
	case "j", "down":
		m.pointerY += cardCellHeight
	case "k", "up":
		m.pointerY -= cardCellHeight

	case "enter", " ":
		sess := m.session
		m.session = nil
		m.mode = boardModeNormal
		m.followCard(sess.DraggedID())
		return m, func() tea.Msg {
			_, err := sess.End(context.Background())
			return commitDoneMsg{entityID: sess.DraggedID(), err: err}
		}

	case "esc", "q":
		// Abandon the gesture. The last preview stays; nothing is sent.
		m.followCard(m.session.DraggedID())
		m.session = nil
		m.mode = boardModeNormal
		return m, nil

	default:
		return m, nil
	}

	if m.pointerX < 0 {
		m.pointerX = 0
	}
	if m.pointerY < 0 {
		m.pointerY = 0
	}

	active := dragdrop.Rect{
		X: m.pointerX - (columnWidth-2)/2,
		Y: m.pointerY - cardCellHeight/2,
		W: columnWidth - 2,
		H: cardCellHeight,
	}
	droppables := buildDroppables(m.lists(), m.svc.Store().CardsInList, m.session.DraggedID())
	if target, ok := dragdrop.ResolveCardTarget(m.pointerX, m.pointerY, active, droppables); ok {
		m.session.Over(target)
	}
	return m, nil
}

func (m BoardModel) updateListMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lists := m.lists()

	switch msg.String() {
	case "h", "left", "l", "right":
		dir := 1
		if msg.String() == "h" || msg.String() == "left" {
			dir = -1
		}
		target := m.selectedCol + dir
		if target < 0 || target >= len(lists) {
			return m, nil
		}
		// A list drag resolves against sibling list rects only.
		active := columnRect(target, len(m.visibleCards(target)))
		droppables := buildDroppables(lists, m.svc.Store().CardsInList, "")
		if id, ok := dragdrop.ResolveListTarget(active, droppables); ok {
			m.listSession.Over(id)
			m.selectedCol = target
		}

	case "enter", " ":
		sess := m.listSession
		m.listSession = nil
		m.mode = boardModeNormal
		// The lists may have been deleted remotely mid-gesture.
		if m.selectedCol >= len(lists) {
			m.clampCursor()
			return m, nil
		}
		listID := lists[m.selectedCol].ID
		return m, func() tea.Msg {
			_, err := sess.End(context.Background())
			return commitDoneMsg{entityID: listID, err: err}
		}

	case "esc", "q":
		m.listSession = nil
		m.mode = boardModeNormal
	}
	return m, nil
}

func (m BoardModel) updateTitleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.titleInput.Value())
		mode := m.mode
		m.mode = boardModeNormal
		if title == "" {
			return m, nil
		}
		if mode == boardModeNewCard {
			lists := m.lists()
			// The target list may have been deleted remotely while typing.
			if m.selectedCol >= len(lists) {
				return m, nil
			}
			listID := lists[m.selectedCol].ID
			return m, func() tea.Msg {
				_, err := m.svc.CreateCard(context.Background(), listID, title, "")
				return createDoneMsg{parentID: listID, err: err}
			}
		}
		boardID := m.boardID
		return m, func() tea.Msg {
			_, err := m.svc.CreateList(context.Background(), boardID, title)
			return createDoneMsg{parentID: boardID, err: err}
		}

	case "esc":
		m.mode = boardModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m BoardModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.mode = boardModeNormal
		if card, ok := m.cardUnderCursor(); ok {
			return m, func() tea.Msg {
				err := m.svc.DeleteCard(context.Background(), card.ID)
				return deleteDoneMsg{entityID: card.ID, err: err}
			}
		}
	case "n", "esc":
		m.mode = boardModeNormal
	}
	return m, nil
}

func (m BoardModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterQuery = m.filterInput.Value()
		m.filterActive = m.filterQuery != ""
		m.mode = boardModeNormal
		m.selectedCard = 0
		return m, nil

	case "esc":
		m.filterQuery = ""
		m.filterActive = false
		m.mode = boardModeNormal
		m.selectedCard = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filterQuery = m.filterInput.Value()
	m.filterActive = m.filterQuery != ""
	return m, cmd
}

// --- state helpers ---

func (m BoardModel) lists() []model.List {
	return m.svc.Store().ListsInBoard(m.boardID)
}

// visibleCards applies the fuzzy filter to one column.
func (m BoardModel) visibleCards(colIdx int) []model.Card {
	lists := m.lists()
	if colIdx >= len(lists) {
		return nil
	}
	cards := m.svc.Store().CardsInList(lists[colIdx].ID)
	if !m.filterActive || m.filterQuery == "" {
		return cards
	}
	haystack := make([]string, len(cards))
	for i, c := range cards {
		haystack[i] = cardSearchString(c)
	}
	matches := fuzzy.Find(m.filterQuery, haystack)
	out := make([]model.Card, 0, len(matches))
	for _, match := range matches {
		out = append(out, cards[match.Index])
	}
	return out
}

func cardSearchString(c model.Card) string {
	parts := []string{c.Title}
	for _, l := range c.Labels {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, " ")
}

func (m BoardModel) cardUnderCursor() (model.Card, bool) {
	cards := m.visibleCards(m.selectedCol)
	if m.selectedCard >= len(cards) {
		return model.Card{}, false
	}
	return cards[m.selectedCard], true
}

func (m *BoardModel) clampCursor() {
	lists := m.lists()
	if m.selectedCol >= len(lists) {
		m.selectedCol = max(0, len(lists)-1)
	}
	visible := len(m.visibleCards(m.selectedCol))
	if m.selectedCard >= visible {
		m.selectedCard = max(0, visible-1)
	}
}

// followCard points the cursor at a card's current location, used after a
// move so the selection tracks the dragged card.
func (m *BoardModel) followCard(cardID string) {
	card, ok := m.svc.Store().Card(cardID)
	if !ok {
		m.clampCursor()
		return
	}
	for colIdx, l := range m.lists() {
		if l.ID != card.ListID {
			continue
		}
		m.selectedCol = colIdx
		for cardIdx, c := range m.visibleCards(colIdx) {
			if c.ID == cardID {
				m.selectedCard = cardIdx
				return
			}
		}
	}
	m.clampCursor()
}

func newTitleInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 120
	ti.Width = 40
	ti.Focus()
	return ti
}

// --- view ---

func (m BoardModel) View() string {
	var s strings.Builder

	board, _ := m.svc.Store().Board(m.boardID)
	s.WriteString(titleStyle.Render(fmt.Sprintf("Board: %s", board.Title)))
	if present := m.merger.Present(m.boardID); len(present) > 0 {
		s.WriteString(presenceStyle.Render(fmt.Sprintf("  %d online", len(present))))
	}
	s.WriteString("\n")

	switch {
	case m.mode == boardModeFilter:
		s.WriteString("  / " + m.filterInput.View())
	case m.mode == boardModeNewCard || m.mode == boardModeNewList:
		s.WriteString("  + " + m.titleInput.View())
	case m.filterActive:
		s.WriteString("  " + filterIndicatorStyle.Render("Filter: "+m.filterQuery))
	}
	s.WriteString("\n")

	lists := m.lists()
	columns := make([]string, 0, len(lists))
	for i := range lists {
		columns = append(columns, m.renderColumn(i, lists[i]))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	s.WriteString("\n")

	if m.errMsg != "" {
		s.WriteString(errorStyle.Render("Error: " + m.errMsg))
		s.WriteString("\n")
	} else if m.message != "" {
		s.WriteString(successStyle.Render(m.message))
		s.WriteString("\n")
	}

	switch m.mode {
	case boardModeMove:
		s.WriteString(helpStyle.Render("hjkl: drag • enter/space: drop • esc: cancel"))
	case boardModeListMove:
		s.WriteString(helpStyle.Render("h/l: move list • enter: drop • esc: cancel"))
	case boardModeConfirmDelete:
		s.WriteString(warningStyle.Render("Delete this card? (y/n)"))
	case boardModeFilter:
		s.WriteString(helpStyle.Render("type to filter • enter: lock • esc: clear"))
	case boardModeNewCard, boardModeNewList:
		s.WriteString(helpStyle.Render("enter: create • esc: cancel"))
	default:
		s.WriteString(helpStyle.Render("hjkl: navigate • m/space: move card • L: move list • n: new card • N: new list • D: delete • /: filter • r: reload • q: quit"))
	}

	return s.String()
}

func (m BoardModel) renderColumn(colIdx int, list model.List) string {
	var s strings.Builder

	titleStyle := columnTitleStyle
	if colIdx == m.selectedCol {
		titleStyle = selectedColumnTitleStyle
	}
	s.WriteString(titleStyle.Render(list.Title))
	s.WriteString("\n\n")

	cards := m.visibleCards(colIdx)
	if len(cards) == 0 {
		s.WriteString(emptyListStyle.Render("(empty)"))
		s.WriteString("\n")
	}
	for cardIdx, card := range cards {
		s.WriteString(m.renderCard(colIdx, cardIdx, card))
		s.WriteString("\n")
	}

	style := columnStyle
	if colIdx == m.selectedCol {
		style = selectedColumnStyle
	}
	return style.Render(s.String())
}

func (m BoardModel) renderCard(colIdx, cardIdx int, card model.Card) string {
	var s strings.Builder
	s.WriteString(cardTitleStyle.Render(card.Title))
	s.WriteString("\n")

	var meta []string
	if card.DueDate != nil {
		meta = append(meta, "due "+card.DueDate.Format("Jan 2"))
	}
	if done, total := card.ChecklistProgress(); total > 0 {
		meta = append(meta, fmt.Sprintf("☑ %d/%d", done, total))
	}
	if n := len(card.AssignedMembers); n > 0 {
		meta = append(meta, fmt.Sprintf("%d assigned", n))
	}
	if len(meta) > 0 {
		s.WriteString(cardMetaStyle.Render(strings.Join(meta, " • ")))
		s.WriteString("\n")
	}

	if len(card.Labels) > 0 {
		names := make([]string, len(card.Labels))
		for i, l := range card.Labels {
			if l.Text != "" {
				names[i] = l.Text
			} else {
				names[i] = l.Color
			}
		}
		s.WriteString(cardLabelStyle.Render(strings.Join(names, " ")))
		s.WriteString("\n")
	} else if preview := model.DescriptionPreview(card.Description); preview != "" {
		if len(preview) > columnWidth-8 {
			preview = preview[:columnWidth-8] + "…"
		}
		s.WriteString(cardMetaStyle.Render(preview))
		s.WriteString("\n")
	}

	style := cardStyle
	if m.session != nil && m.session.DraggedID() == card.ID {
		style = grabbedCardStyle
	} else if colIdx == m.selectedCol && cardIdx == m.selectedCard && m.mode != boardModeMove {
		style = selectedCardStyle
	}
	return style.Width(columnWidth - 2*columnPaddingHorizontal - 2).Render(s.String())
}
