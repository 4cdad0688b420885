package inventory

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"construction-backoffice/internal/database"
	"construction-backoffice/internal/models"
)

// ErrNoBuildings is returned when the building-name list is empty after
// trimming. Nothing is written to the store in that case.
var ErrNoBuildings = errors.New("no building names supplied")

// maxFlatsPerFloor is a hard limit of the numbering scheme: flat numbers are
// "{floor}{seq:02d}", so a floor with 100 or more flats would wrap and
// collide. Buildings asking for more are refused, not silently wrapped.
const maxFlatsPerFloor = 99

// BuildingSpec describes one building to generate.
type BuildingSpec struct {
	Name          string `json:"name"`
	Floors        int    `json:"floors"`
	FlatsPerFloor int    `json:"flats_per_floor"`
}

// BuildingResult reports the outcome for one building in a batch.
type BuildingResult struct {
	Name      string   `json:"name"`
	Requested int      `json:"requested"`
	Created   int      `json:"created"`
	Errors    []string `json:"errors,omitempty"`
}

// GenerationResult reports the outcome of a whole generation batch. A failed
// building never aborts the rest of the batch; callers inspect per-building
// errors and decide whether to retry.
type GenerationResult struct {
	TotalRequested int              `json:"total_requested"`
	TotalCreated   int              `json:"total_created"`
	Buildings      []BuildingResult `json:"buildings"`
	ExecutedAt     time.Time        `json:"executed_at"`
}

// HasErrors reports whether any building in the batch failed, fully or in part.
func (r *GenerationResult) HasErrors() bool {
	for _, b := range r.Buildings {
		if len(b.Errors) > 0 {
			return true
		}
	}
	return false
}

// Generator materializes Building → Floor → Flat records from a compact spec.
type Generator struct {
	store     database.Store
	projectID string
}

// NewGenerator creates a new generator writing into the given project.
func NewGenerator(store database.Store, projectID string) *Generator {
	return &Generator{store: store, projectID: projectID}
}

// ParseBuildings splits a comma-separated building-name input, trimming
// whitespace and dropping empty entries.
func ParseBuildings(input string) []string {
	parts := strings.Split(input, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CoerceCount parses a free-entry count field. Non-numeric or missing values
// become 0, producing zero records for that building rather than failing the
// whole batch.
func CoerceCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 0 {
		return 0
	}
	return n
}

// Generate creates floors × flatsPerFloor flats per building, numbering each
// flat "{floor}{seq:02d}" so the (block, floor, flatNumber) triples are
// pairwise distinct. Records are persisted one by one; individual failures are
// collected per building instead of aborting the batch.
func (g *Generator) Generate(specs []BuildingSpec) (*GenerationResult, error) {
	if len(specs) == 0 {
		return nil, ErrNoBuildings
	}

	result := &GenerationResult{
		Buildings:  make([]BuildingResult, 0, len(specs)),
		ExecutedAt: time.Now(),
	}

	for _, spec := range specs {
		br := BuildingResult{Name: spec.Name}

		floors := spec.Floors
		flatsPerFloor := spec.FlatsPerFloor
		if floors < 0 {
			floors = 0
		}
		if flatsPerFloor < 0 {
			flatsPerFloor = 0
		}

		if flatsPerFloor > maxFlatsPerFloor {
			br.Errors = append(br.Errors,
				fmt.Sprintf("flats per floor %d exceeds the %d limit of the numbering scheme", flatsPerFloor, maxFlatsPerFloor))
			result.Buildings = append(result.Buildings, br)
			continue
		}

		br.Requested = floors * flatsPerFloor
		result.TotalRequested += br.Requested

		for f := 1; f <= floors; f++ {
			for n := 1; n <= flatsPerFloor; n++ {
				flat := models.Flat{
					ProjectID:  g.projectID,
					Block:      spec.Name,
					Floor:      fmt.Sprintf("%d", f),
					FlatNumber: fmt.Sprintf("%d%02d", f, n),
					Type:       models.FlatType1BHK,
					Status:     models.FlatStatusAvailable,
				}

				if err := g.store.CreateFlat(&flat); err != nil {
					br.Errors = append(br.Errors,
						fmt.Sprintf("flat %s floor %d: %v", flat.FlatNumber, f, err))
					continue
				}
				br.Created++
				result.TotalCreated++

				if err := g.store.AppendChangeLog(&models.ChangeLog{
					FlatID:     flat.ID,
					ChangeType: models.ChangeTypeGenerated,
					NewValue:   fmt.Sprintf("%s/%s/%s", flat.Block, flat.Floor, flat.FlatNumber),
				}); err != nil {
					log.Printf("Generator: failed to record change log for flat %s: %v", flat.ID, err)
				}
			}
		}

		result.Buildings = append(result.Buildings, br)
	}

	log.Printf("Generator: batch done, %d/%d flats created across %d buildings",
		result.TotalCreated, result.TotalRequested, len(specs))
	return result, nil
}
