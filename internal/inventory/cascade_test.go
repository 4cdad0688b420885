package inventory

import (
	"errors"
	"testing"

	"construction-backoffice/internal/models"
)

func seededStore(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore()
	for _, f := range []models.Flat{
		{ProjectID: "p1", Block: "A", Floor: "1", FlatNumber: "101"},
		{ProjectID: "p1", Block: "A", Floor: "1", FlatNumber: "102"},
		{ProjectID: "p1", Block: "A", Floor: "2", FlatNumber: "201"},
		{ProjectID: "p1", Block: "A", Floor: "2", FlatNumber: "202"},
		{ProjectID: "p1", Block: "B", Floor: "1", FlatNumber: "101"},
	} {
		flat := f
		if err := store.CreateFlat(&flat); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func TestCascadeWrongTokenTouchesNothing(t *testing.T) {
	store := seededStore(t)
	cascade := NewCascade(store, "p1", "DELETE")

	if _, err := cascade.Delete(nil, "A", "delete"); !errors.Is(err, ErrBadConfirmToken) {
		t.Fatalf("expected ErrBadConfirmToken, got %v", err)
	}
	if store.deleteCalls != 0 {
		t.Errorf("store delete called despite bad token")
	}
	if len(store.flats) != 5 {
		t.Errorf("flats removed despite bad token: %d left", len(store.flats))
	}
}

func TestCascadeFloorScope(t *testing.T) {
	store := seededStore(t)
	cascade := NewCascade(store, "p1", "DELETE")

	result, err := cascade.Delete([]string{"A"}, "1", "DELETE")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.Scope != models.DeleteScopeFloor || result.Block != "A" || result.Floor != "1" {
		t.Errorf("result target wrong: %+v", result)
	}
	if result.DeletedCount != 2 {
		t.Errorf("deleted %d flats, want 2", result.DeletedCount)
	}

	for _, f := range store.flats {
		if f.Block == "A" && f.Floor == "1" {
			t.Errorf("flat %s/%s/%s survived the cascade", f.Block, f.Floor, f.FlatNumber)
		}
	}
	if len(store.flats) != 3 {
		t.Errorf("%d flats left, want 3 (A/2 and B untouched)", len(store.flats))
	}
}

func TestCascadeBuildingScope(t *testing.T) {
	store := seededStore(t)
	cascade := NewCascade(store, "p1", "DELETE")

	result, err := cascade.Delete(nil, "A", "DELETE")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.Scope != models.DeleteScopeBuilding || result.DeletedCount != 4 {
		t.Errorf("building delete wrong: %+v", result)
	}
	if len(store.flats) != 1 || store.flats[0].Block != "B" {
		t.Errorf("block B should be untouched, flats left: %d", len(store.flats))
	}
}

func TestCascadeEmptyFolderIsNoOp(t *testing.T) {
	store := seededStore(t)
	cascade := NewCascade(store, "p1", "DELETE")

	result, err := cascade.Delete(nil, "Z", "DELETE")
	if err != nil {
		t.Fatalf("empty folder should be a legal no-op, got %v", err)
	}
	if result.TargetCount != 0 || result.DeletedCount != 0 {
		t.Errorf("no-op result wrong: %+v", result)
	}
	if store.deleteCalls != 0 {
		t.Errorf("bulk delete issued for an empty target set")
	}
}

func TestCascadeRejectsDeepTarget(t *testing.T) {
	store := seededStore(t)
	cascade := NewCascade(store, "p1", "DELETE")

	if _, err := cascade.Delete([]string{"A", "1"}, "101", "DELETE"); !errors.Is(err, ErrBadTarget) {
		t.Fatalf("expected ErrBadTarget, got %v", err)
	}
}

func TestCascadeWritesDeleteLogs(t *testing.T) {
	store := seededStore(t)
	cascade := NewCascade(store, "p1", "DELETE")

	if _, err := cascade.Delete([]string{"A"}, "2", "DELETE"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.deleteLogs) != 2 {
		t.Fatalf("expected 2 delete log rows, got %d", len(store.deleteLogs))
	}
	for _, dl := range store.deleteLogs {
		if dl.Scope != models.DeleteScopeFloor {
			t.Errorf("delete log scope = %q, want %q", dl.Scope, models.DeleteScopeFloor)
		}
		if dl.Reason != models.DeleteReasonCascade {
			t.Errorf("delete log reason = %q, want %q", dl.Reason, models.DeleteReasonCascade)
		}
	}
}
