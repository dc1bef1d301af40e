package console

import "testing"

func TestStateDefaults(t *testing.T) {
	s := NewState()
	if s.Panel() != PanelStrategies {
		t.Errorf("initial panel = %v, want strategies", s.Panel())
	}
	if s.Selected() != "" {
		t.Errorf("initial selection = %q, want empty", s.Selected())
	}
	if s.Modal() != ModalNone {
		t.Errorf("initial modal = %v, want none", s.Modal())
	}
}

func TestSelectionAndPanel(t *testing.T) {
	s := NewState()
	s.Select("gamma_scalper")
	s.SetPanel(PanelExposure)
	if s.Selected() != "gamma_scalper" || s.Panel() != PanelExposure {
		t.Errorf("state = %q/%v", s.Selected(), s.Panel())
	}
	s.Select("")
	if s.Selected() != "" {
		t.Error("clearing selection failed")
	}
}

func TestModalReplaceAndClose(t *testing.T) {
	s := NewState()
	s.OpenModal(ModalConfirm)
	s.OpenModal(ModalKillConfirm)
	if s.Modal() != ModalKillConfirm {
		t.Errorf("modal = %v, want kill_confirm replacing confirm", s.Modal())
	}
	s.CloseModal()
	if s.Modal() != ModalNone {
		t.Errorf("modal after close = %v", s.Modal())
	}
}
