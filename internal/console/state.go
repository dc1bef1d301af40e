// Package console holds UI-only view state: selection, active panel, open
// modal. It carries no business invariants; the snapshot and the alert
// queue are owned elsewhere and never stored here.
package console

import "sync"

// Panel identifies the active console panel.
type Panel string

const (
	PanelStrategies Panel = "strategies"
	PanelExposure   Panel = "exposure"
	PanelOrders     Panel = "orders"
	PanelInfra      Panel = "infra"
	PanelLogs       Panel = "logs"
)

// Modal identifies an open modal dialog.
type Modal string

const (
	ModalNone        Modal = ""
	ModalConfirm     Modal = "confirm"
	ModalKillConfirm Modal = "kill_confirm"
	ModalErrorDetail Modal = "error_detail"
)

// State is the centrally owned view state, passed to child views by
// reference rather than living in package globals.
type State struct {
	mu sync.Mutex

	selected    string
	activePanel Panel
	openModal   Modal
}

// NewState creates view state with the strategy grid active.
func NewState() *State {
	return &State{activePanel: PanelStrategies}
}

// Select sets the selected strategy name (empty clears the selection).
func (s *State) Select(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = name
}

// Selected returns the selected strategy name.
func (s *State) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetPanel switches the active panel.
func (s *State) SetPanel(p Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePanel = p
}

// Panel returns the active panel.
func (s *State) Panel() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePanel
}

// OpenModal opens a modal dialog, replacing any open one.
func (s *State) OpenModal(m Modal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openModal = m
}

// CloseModal closes the open modal, if any.
func (s *State) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openModal = ModalNone
}

// Modal returns the open modal.
func (s *State) Modal() Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openModal
}
