package inventory

import (
	"errors"
	"testing"
)

func TestNavigatorInitialState(t *testing.T) {
	if got := NewNavigator(0).State(); got != StateSetup {
		t.Errorf("empty inventory starts in %s, want %s", got, StateSetup)
	}
	if got := NewNavigator(5).State(); got != StateFolders {
		t.Errorf("populated inventory starts in %s, want %s", got, StateFolders)
	}
}

func TestNavigatorDescendAndBack(t *testing.T) {
	nav := NewNavigator(5)

	if err := nav.EnterFolder("A"); err != nil {
		t.Fatalf("EnterFolder(A): %v", err)
	}
	if err := nav.EnterFolder("2"); err != nil {
		t.Fatalf("EnterFolder(2): %v", err)
	}
	if path := nav.Path(); len(path) != 2 || path[0] != "A" || path[1] != "2" {
		t.Fatalf("path = %v, want [A 2]", path)
	}

	if err := nav.EnterFolder("extra"); !errors.Is(err, ErrPathFull) {
		t.Fatalf("descending past flat level: got %v, want ErrPathFull", err)
	}

	if err := nav.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if path := nav.Path(); len(path) != 1 || path[0] != "A" {
		t.Fatalf("path after Back = %v, want [A]", path)
	}

	if err := nav.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if err := nav.Back(); !errors.Is(err, ErrAtRoot) {
		t.Fatalf("Back at root: got %v, want ErrAtRoot", err)
	}
}

func TestNavigatorOpenFlatKeepsPath(t *testing.T) {
	nav := NewNavigator(5)
	nav.EnterFolder("A")
	nav.EnterFolder("1")

	if err := nav.OpenFlat("flat-1"); err != nil {
		t.Fatalf("OpenFlat: %v", err)
	}
	if nav.State() != StateFlatDetail || nav.SelectedFlat() != "flat-1" {
		t.Fatalf("state %s, selected %q after OpenFlat", nav.State(), nav.SelectedFlat())
	}

	if err := nav.Back(); err != nil {
		t.Fatalf("Back from detail: %v", err)
	}
	if nav.State() != StateFolders || nav.SelectedFlat() != "" {
		t.Errorf("Back from detail left state %s, selected %q", nav.State(), nav.SelectedFlat())
	}
	if path := nav.Path(); len(path) != 2 || path[0] != "A" || path[1] != "1" {
		t.Errorf("Back from detail changed path: %v", path)
	}
}

func TestNavigatorSetupFlows(t *testing.T) {
	nav := NewNavigator(0)

	// Idempotent while already in setup.
	if err := nav.EnterSetup(); err != nil {
		t.Fatalf("EnterSetup from setup: %v", err)
	}

	if err := nav.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: %v", err)
	}
	if nav.State() != StateFolders || len(nav.Path()) != 0 {
		t.Fatalf("FinishSetup left state %s path %v", nav.State(), nav.Path())
	}

	nav.EnterFolder("A")
	if err := nav.EnterSetup(); err != nil {
		t.Fatalf("EnterSetup from folders: %v", err)
	}
	if err := nav.CancelSetup(); err != nil {
		t.Fatalf("CancelSetup: %v", err)
	}
	if path := nav.Path(); len(path) != 1 || path[0] != "A" {
		t.Errorf("CancelSetup should keep the path, got %v", path)
	}
}

func TestNavigatorRejectedTransitionsLeaveStateUnchanged(t *testing.T) {
	nav := NewNavigator(0)

	if err := nav.EnterFolder("A"); !errors.Is(err, ErrNotInFolders) {
		t.Errorf("EnterFolder in setup: got %v, want ErrNotInFolders", err)
	}
	if err := nav.OpenFlat("x"); !errors.Is(err, ErrNotInFolders) {
		t.Errorf("OpenFlat in setup: got %v, want ErrNotInFolders", err)
	}
	if err := nav.Back(); !errors.Is(err, ErrNotInFolders) {
		t.Errorf("Back in setup: got %v, want ErrNotInFolders", err)
	}
	if nav.State() != StateSetup || len(nav.Path()) != 0 || nav.SelectedFlat() != "" {
		t.Fatalf("rejected transitions mutated the navigator: %s %v %q",
			nav.State(), nav.Path(), nav.SelectedFlat())
	}

	nav.FinishSetup()
	if err := nav.FinishSetup(); !errors.Is(err, ErrNotInSetup) {
		t.Errorf("FinishSetup outside setup: got %v, want ErrNotInSetup", err)
	}
	if err := nav.CancelSetup(); !errors.Is(err, ErrNotInSetup) {
		t.Errorf("CancelSetup outside setup: got %v, want ErrNotInSetup", err)
	}
}
