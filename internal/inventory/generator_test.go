package inventory

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"construction-backoffice/internal/models"
)

// memStore is an in-memory Store used by the service tests.
type memStore struct {
	flats      []models.Flat
	changeLogs []models.ChangeLog
	deleteLogs []models.DeleteLog

	nextID      int
	createErr   func(f *models.Flat) error
	deleteCalls int
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) ListFlats(projectID string) ([]models.Flat, error) {
	out := make([]models.Flat, 0, len(s.flats))
	for _, f := range s.flats {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memStore) GetFlat(id string) (*models.Flat, error) {
	for i := range s.flats {
		if s.flats[i].ID == id {
			f := s.flats[i]
			return &f, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *memStore) CreateFlat(f *models.Flat) error {
	if s.createErr != nil {
		if err := s.createErr(f); err != nil {
			return err
		}
	}
	s.nextID++
	f.ID = fmt.Sprintf("flat-%d", s.nextID)
	s.flats = append(s.flats, *f)
	return nil
}

func (s *memStore) UpdateFlat(f *models.Flat) error {
	for i := range s.flats {
		if s.flats[i].ID == f.ID {
			s.flats[i] = *f
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memStore) DeleteFlat(id string) error {
	_, err := s.DeleteFlats([]string{id}, models.DeleteScopeFlat, models.DeleteReasonManual)
	return err
}

func (s *memStore) DeleteFlats(ids []string, scope, reason string) (int, error) {
	s.deleteCalls++
	keep := s.flats[:0]
	deleted := 0
	for _, f := range s.flats {
		removed := false
		for _, id := range ids {
			if f.ID == id {
				removed = true
				break
			}
		}
		if removed {
			deleted++
			s.deleteLogs = append(s.deleteLogs, models.DeleteLog{
				FlatID: f.ID, Block: f.Block, Floor: f.Floor,
				FlatNumber: f.FlatNumber, Scope: scope, Reason: reason,
			})
			continue
		}
		keep = append(keep, f)
	}
	s.flats = keep
	return deleted, nil
}

func (s *memStore) AppendChangeLog(c *models.ChangeLog) error {
	s.changeLogs = append(s.changeLogs, *c)
	return nil
}

func (s *memStore) RecentChangeLogs(limit int) ([]models.ChangeLog, error) {
	return s.changeLogs, nil
}

func (s *memStore) RecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	return s.deleteLogs, nil
}

func TestParseBuildings(t *testing.T) {
	names := ParseBuildings(" A, B ,,  C ")
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d (%v)", len(names), names)
	}
	for i, want := range []string{"A", "B", "C"} {
		if names[i] != want {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want)
		}
	}

	if got := ParseBuildings(" , ,"); len(got) != 0 {
		t.Errorf("expected no names from blank input, got %v", got)
	}
}

func TestCoerceCount(t *testing.T) {
	cases := map[string]int{
		"12":  12,
		"":    0,
		"abc": 0,
		"-3":  0,
		" 4 ": 4,
	}
	for raw, want := range cases {
		if got := CoerceCount(raw); got != want {
			t.Errorf("CoerceCount(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestGenerateCountsAndNumbering(t *testing.T) {
	store := newMemStore()
	gen := NewGenerator(store, "p1")

	result, err := gen.Generate([]BuildingSpec{
		{Name: "A", Floors: 2, FlatsPerFloor: 2},
		{Name: "B", Floors: 2, FlatsPerFloor: 2},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if result.TotalCreated != 8 {
		t.Fatalf("expected 8 flats created, got %d", result.TotalCreated)
	}
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %+v", result.Buildings)
	}

	// All (block, floor, flatNumber) triples must be pairwise distinct.
	seen := make(map[string]bool)
	for _, f := range store.flats {
		key := f.Block + "/" + f.Floor + "/" + f.FlatNumber
		if seen[key] {
			t.Errorf("duplicate position %s", key)
		}
		seen[key] = true
	}

	var aFloor1 []string
	for _, f := range store.flats {
		if f.Block == "A" && f.Floor == "1" {
			aFloor1 = append(aFloor1, f.FlatNumber)
		}
	}
	if len(aFloor1) != 2 || aFloor1[0] != "101" || aFloor1[1] != "102" {
		t.Errorf("A floor 1 flats = %v, want [101 102]", aFloor1)
	}

	for _, f := range store.flats {
		if f.Status != models.FlatStatusAvailable {
			t.Errorf("flat %s generated with status %s", f.FlatNumber, f.Status)
		}
		if !f.TotalAmount.IsZero() || !f.PaidAmount.IsZero() {
			t.Errorf("flat %s generated with non-zero financials", f.FlatNumber)
		}
	}
}

func TestGenerateEmptyBuildingList(t *testing.T) {
	store := newMemStore()
	gen := NewGenerator(store, "p1")

	if _, err := gen.Generate(nil); !errors.Is(err, ErrNoBuildings) {
		t.Fatalf("expected ErrNoBuildings, got %v", err)
	}
	if len(store.flats) != 0 {
		t.Fatalf("store written despite rejected batch")
	}
}

func TestGenerateZeroCountsAreBestEffort(t *testing.T) {
	store := newMemStore()
	gen := NewGenerator(store, "p1")

	result, err := gen.Generate([]BuildingSpec{
		{Name: "A", Floors: 0, FlatsPerFloor: 5},
		{Name: "B", Floors: 1, FlatsPerFloor: 3},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.TotalCreated != 3 {
		t.Fatalf("expected 3 flats (A contributes none), got %d", result.TotalCreated)
	}
}

func TestGenerateRefusesOversizedFloor(t *testing.T) {
	store := newMemStore()
	gen := NewGenerator(store, "p1")

	result, err := gen.Generate([]BuildingSpec{
		{Name: "A", Floors: 1, FlatsPerFloor: 100},
		{Name: "B", Floors: 1, FlatsPerFloor: 2},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(result.Buildings[0].Errors) == 0 {
		t.Errorf("expected an error for the oversized building")
	}
	if result.Buildings[0].Created != 0 {
		t.Errorf("oversized building must create nothing, got %d", result.Buildings[0].Created)
	}
	if result.Buildings[1].Created != 2 {
		t.Errorf("other building should proceed, created %d", result.Buildings[1].Created)
	}
}

func TestGenerateReportsPartialFailure(t *testing.T) {
	store := newMemStore()
	store.createErr = func(f *models.Flat) error {
		if f.Block == "B" {
			return errors.New("insert failed")
		}
		return nil
	}
	gen := NewGenerator(store, "p1")

	result, err := gen.Generate([]BuildingSpec{
		{Name: "A", Floors: 1, FlatsPerFloor: 2},
		{Name: "B", Floors: 1, FlatsPerFloor: 2},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if !result.HasErrors() {
		t.Fatalf("expected per-building errors to be reported")
	}
	if result.Buildings[0].Created != 2 {
		t.Errorf("building A should succeed, created %d", result.Buildings[0].Created)
	}
	if result.Buildings[1].Created != 0 || len(result.Buildings[1].Errors) != 2 {
		t.Errorf("building B failures not reported: %+v", result.Buildings[1])
	}
	for _, msg := range result.Buildings[1].Errors {
		if !strings.Contains(msg, "insert failed") {
			t.Errorf("error message lost the cause: %q", msg)
		}
	}
}
