package tui

import (
	"log"
	"time"

	"github.com/tinytelemetry/stockroom/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// boxPhase tracks where a message box is in its lifecycle.
type boxPhase int

const (
	phaseEntering boxPhase = iota
	phaseShown
	phaseExiting
)

func (p boxPhase) String() string {
	switch p {
	case phaseEntering:
		return "entering"
	case phaseShown:
		return "shown"
	case phaseExiting:
		return "exiting"
	}
	return "unknown"
}

// alertBox is the owned state of one message box.
type alertBox struct {
	id       int
	category model.Category
	messages []string

	remaining        int  // seconds of lifetime left, never negative
	countdownRunning bool // a one-second tick chain is scheduled for this box
	countdownSeq     int  // bumps on every new chain so ticks of a cancelled one are dropped

	phase   boxPhase
	anim    *animation
	animSeq int // bumps on every new animation so stale frames are dropped
	offset  float64
	opacity float64
}

// AlertBox is a read-only snapshot of a message box.
type AlertBox struct {
	ID               int
	Category         model.Category
	Messages         []string
	Remaining        int
	CountdownRunning bool
	Exiting          bool
	Offset           float64
	Opacity          float64
}

func (b *alertBox) snapshot() AlertBox {
	return AlertBox{
		ID:               b.id,
		Category:         b.category,
		Messages:         append([]string(nil), b.messages...),
		Remaining:        b.remaining,
		CountdownRunning: b.countdownRunning,
		Exiting:          b.phase == phaseExiting,
		Offset:           b.offset,
		Opacity:          b.opacity,
	}
}

// alertCountdownMsg is the one-second tick of a box's countdown.
type alertCountdownMsg struct {
	boxID int
	seq   int
}

// alertFrameMsg advances a box's running animation by one frame.
type alertFrameMsg struct {
	boxID int
	seq   int
}

// AlertConfig tunes the alert manager.
type AlertConfig struct {
	AnimationDuration time.Duration
	AnimationFrame    time.Duration
	EndOpacity        float64
	AnchorMargin      int
	BoxWidth          int
}

// DefaultAlertConfig returns the stock animation and layout settings.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		AnimationDuration: 250 * time.Millisecond,
		AnimationFrame:    5 * time.Millisecond,
		EndOpacity:        0.8,
		AnchorMargin:      1,
		BoxWidth:          44,
	}
}

// tickFunc schedules fn after d. It matches tea.Tick.
type tickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// AlertManager owns the alert container: at most one box per category,
// each with its own countdown and animations.
type AlertManager struct {
	cfg    AlertConfig
	boxes  []*alertBox // container order, oldest first
	nextID int

	anchorOffset int
	tick         tickFunc
	logger       *log.Logger
}

// NewAlertManager creates an empty alert container.
func NewAlertManager(cfg AlertConfig) *AlertManager {
	def := DefaultAlertConfig()
	if cfg.AnimationFrame <= 0 {
		cfg.AnimationFrame = def.AnimationFrame
	}
	if cfg.AnimationDuration < 0 {
		cfg.AnimationDuration = def.AnimationDuration
	}
	if cfg.EndOpacity <= 0 || cfg.EndOpacity > 1 {
		cfg.EndOpacity = def.EndOpacity
	}
	if cfg.AnchorMargin < 0 {
		cfg.AnchorMargin = 0
	}
	if cfg.BoxWidth <= 0 {
		cfg.BoxWidth = def.BoxWidth
	}
	m := &AlertManager{
		cfg:    cfg,
		tick:   tea.Tick,
		logger: log.Default(),
	}
	m.recalculateAnchor()
	return m
}

// Display shows a batch. Messages merge into the box of the same category,
// extending its lifetime; otherwise a new box enters. A box that is already
// leaving is called back from where its exit animation got to.
func (m *AlertManager) Display(batch model.MessageBatch, extendSeconds int) tea.Cmd {
	switch batch.Category {
	case model.CategoryError, model.CategorySuccess:
	default:
		m.logger.Printf("tui: dropping message batch with invalid category %v", batch.Category)
		return nil
	}
	if extendSeconds < 0 {
		extendSeconds = 0
	}

	var cmds []tea.Cmd
	box := m.boxFor(batch.Category)
	switch {
	case box == nil:
		m.nextID++
		box = &alertBox{id: m.nextID, category: batch.Category}
		m.boxes = append(m.boxes, box)
		cmds = append(cmds, m.startAnimation(box,
			entranceAnimation(m.cfg.AnimationDuration, m.cfg.AnimationFrame, m.cfg.EndOpacity)))
	case box.phase == phaseExiting:
		box.phase = phaseEntering
		cmds = append(cmds, m.startAnimation(box,
			newAnimation(m.cfg.AnimationDuration, m.cfg.AnimationFrame, box.offset, 0, box.opacity, m.cfg.EndOpacity)))
	}

	box.messages = append(box.messages, batch.Messages...)
	cmds = append(cmds, m.extendCountdown(box, extendSeconds))
	m.recalculateAnchor()

	return tea.Batch(cmds...)
}

// Dismiss closes the live box of a category right away.
func (m *AlertManager) Dismiss(category model.Category) tea.Cmd {
	box := m.liveBox(category)
	if box == nil {
		return nil
	}
	return m.beginExit(box)
}

// DismissNewest closes the most recently created live box.
func (m *AlertManager) DismissNewest() tea.Cmd {
	for i := len(m.boxes) - 1; i >= 0; i-- {
		if m.boxes[i].phase != phaseExiting {
			return m.beginExit(m.boxes[i])
		}
	}
	return nil
}

// Update handles countdown ticks and animation frames. Other messages are ignored.
func (m *AlertManager) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case alertCountdownMsg:
		return m.handleCountdown(msg)
	case alertFrameMsg:
		return m.handleFrame(msg)
	}
	return nil
}

// Box returns a snapshot of the live box for category.
func (m *AlertManager) Box(category model.Category) (AlertBox, bool) {
	box := m.liveBox(category)
	if box == nil {
		return AlertBox{}, false
	}
	return box.snapshot(), true
}

// Len returns the number of boxes in the container.
func (m *AlertManager) Len() int {
	return len(m.boxes)
}

// AnchorOffset is the distance in rows from the anchor edge to the top of the
// stack: the margin plus the rendered height of every box.
func (m *AlertManager) AnchorOffset() int {
	return m.anchorOffset
}

func (m *AlertManager) liveBox(category model.Category) *alertBox {
	for _, b := range m.boxes {
		if b.category == category && b.phase != phaseExiting {
			return b
		}
	}
	return nil
}

// boxFor returns the box of category, exiting or not.
func (m *AlertManager) boxFor(category model.Category) *alertBox {
	for _, b := range m.boxes {
		if b.category == category {
			return b
		}
	}
	return nil
}

func (m *AlertManager) boxByID(id int) *alertBox {
	for _, b := range m.boxes {
		if b.id == id {
			return b
		}
	}
	return nil
}

// extendCountdown adds lifetime and starts the countdown if none is running.
func (m *AlertManager) extendCountdown(box *alertBox, seconds int) tea.Cmd {
	box.remaining += seconds
	if box.countdownRunning {
		return nil
	}
	box.countdownRunning = true
	box.countdownSeq++
	return m.countdownTick(box)
}

func (m *AlertManager) countdownTick(box *alertBox) tea.Cmd {
	id, seq := box.id, box.countdownSeq
	return m.tick(time.Second, func(time.Time) tea.Msg {
		return alertCountdownMsg{boxID: id, seq: seq}
	})
}

func (m *AlertManager) handleCountdown(msg alertCountdownMsg) tea.Cmd {
	box := m.boxByID(msg.boxID)
	if box == nil || !box.countdownRunning || box.countdownSeq != msg.seq {
		return nil
	}

	if box.remaining > 0 {
		box.remaining--
	}
	if box.remaining == 0 {
		return m.beginExit(box)
	}
	return m.countdownTick(box)
}

// beginExit stops the countdown and slides the box out from where it is.
func (m *AlertManager) beginExit(box *alertBox) tea.Cmd {
	if box.phase == phaseExiting {
		return nil
	}
	box.countdownRunning = false
	box.phase = phaseExiting
	return m.startAnimation(box, exitAnimation(m.cfg.AnimationDuration, m.cfg.AnimationFrame, box.offset, box.opacity))
}

func (m *AlertManager) startAnimation(box *alertBox, anim *animation) tea.Cmd {
	box.animSeq++
	box.anim = anim
	box.offset = anim.offset()
	box.opacity = anim.opacity()
	if anim.done() {
		return m.finishAnimation(box)
	}
	return m.frameTick(box.id, box.animSeq)
}

func (m *AlertManager) frameTick(id, seq int) tea.Cmd {
	return m.tick(m.cfg.AnimationFrame, func(time.Time) tea.Msg {
		return alertFrameMsg{boxID: id, seq: seq}
	})
}

func (m *AlertManager) handleFrame(msg alertFrameMsg) tea.Cmd {
	box := m.boxByID(msg.boxID)
	if box == nil || box.anim == nil || box.animSeq != msg.seq {
		return nil
	}

	done := box.anim.step()
	box.offset = box.anim.offset()
	box.opacity = box.anim.opacity()
	if done {
		return m.finishAnimation(box)
	}
	return m.frameTick(box.id, box.animSeq)
}

func (m *AlertManager) finishAnimation(box *alertBox) tea.Cmd {
	box.anim = nil
	switch box.phase {
	case phaseEntering:
		box.phase = phaseShown
	case phaseExiting:
		m.remove(box)
	}
	return nil
}

func (m *AlertManager) remove(box *alertBox) {
	for i, b := range m.boxes {
		if b == box {
			m.boxes = append(m.boxes[:i], m.boxes[i+1:]...)
			break
		}
	}
	box.countdownRunning = false
	m.recalculateAnchor()
}

func (m *AlertManager) recalculateAnchor() {
	offset := m.cfg.AnchorMargin
	for _, b := range m.boxes {
		offset += b.height(m.cfg.BoxWidth)
	}
	m.anchorOffset = offset
}
