package inventory

import (
	"errors"
	"testing"

	"construction-backoffice/internal/models"
)

func sampleFlats() []models.Flat {
	return []models.Flat{
		{ID: "1", Block: "B", Floor: "1", FlatNumber: "101"},
		{ID: "2", Block: "A", Floor: "10", FlatNumber: "1001"},
		{ID: "3", Block: "A", Floor: "2", FlatNumber: "202"},
		{ID: "4", Block: "A", Floor: "2", FlatNumber: "201"},
		{ID: "5", Block: "A", Floor: "1", FlatNumber: "102"},
		{ID: "6", Block: "A", Floor: "1", FlatNumber: "101"},
	}
}

func TestFoldersRoot(t *testing.T) {
	folders, err := Folders(sampleFlats(), nil)
	if err != nil {
		t.Fatalf("Folders returned error: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("expected 2 block folders, got %d", len(folders))
	}
	if folders[0].Key != "A" || folders[0].Label != "Tower A" || folders[0].Count != 5 {
		t.Errorf("folder A wrong: %+v", folders[0])
	}
	if folders[1].Key != "B" || folders[1].Count != 1 {
		t.Errorf("folder B wrong: %+v", folders[1])
	}
}

func TestFoldersFloorsNumericOrder(t *testing.T) {
	folders, err := Folders(sampleFlats(), []string{"A"})
	if err != nil {
		t.Fatalf("Folders returned error: %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("expected 3 floor folders for block A, got %d", len(folders))
	}
	for i, want := range []string{"1", "2", "10"} {
		if folders[i].Key != want {
			t.Errorf("floor order[%d] = %q, want %q", i, folders[i].Key, want)
		}
	}
	if folders[0].Label != "Floor 1" {
		t.Errorf("floor label = %q, want %q", folders[0].Label, "Floor 1")
	}
}

func TestFoldersScopedToBlock(t *testing.T) {
	folders, err := Folders(sampleFlats(), []string{"B"})
	if err != nil {
		t.Fatalf("Folders returned error: %v", err)
	}
	if len(folders) != 1 || folders[0].Key != "1" || folders[0].Count != 1 {
		t.Errorf("block B floors = %+v, want single floor 1", folders)
	}
}

func TestFoldersPathTooDeep(t *testing.T) {
	if _, err := Folders(sampleFlats(), []string{"A", "1"}); !errors.Is(err, ErrPathTooDeep) {
		t.Fatalf("expected ErrPathTooDeep, got %v", err)
	}
}

func TestFlatsAtSorted(t *testing.T) {
	flats := FlatsAt(sampleFlats(), "A", "2")
	if len(flats) != 2 {
		t.Fatalf("expected 2 flats at A/2, got %d", len(flats))
	}
	if flats[0].FlatNumber != "201" || flats[1].FlatNumber != "202" {
		t.Errorf("flats not sorted: %s, %s", flats[0].FlatNumber, flats[1].FlatNumber)
	}
}

func TestLessNumericAware(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"3", "3A", true},
		{"3A", "3", false},
		{"G", "M", true},
		{"2", "2", false},
	}
	for _, c := range cases {
		if got := lessNumericAware(c.a, c.b); got != c.want {
			t.Errorf("lessNumericAware(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
