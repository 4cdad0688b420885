package inventory

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"construction-backoffice/internal/database"
	"construction-backoffice/internal/models"
)

// Cascade deletion errors.
var (
	ErrBadConfirmToken = errors.New("cascade: confirmation token mismatch")
	ErrBadTarget       = errors.New("cascade: target must be a building or a floor")
)

// Cascade resolves folder-level deletion requests into bulk flat removals.
type Cascade struct {
	store        database.Store
	projectID    string
	confirmToken string
}

// NewCascade creates a cascade deletion service. confirmToken is the shared
// secret callers must supply before anything is resolved or removed.
func NewCascade(store database.Store, projectID, confirmToken string) *Cascade {
	return &Cascade{store: store, projectID: projectID, confirmToken: confirmToken}
}

// CascadeResult reports a folder deletion.
type CascadeResult struct {
	Scope        string    `json:"scope"`
	Block        string    `json:"block"`
	Floor        string    `json:"floor,omitempty"`
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	DeletedIDs   []string  `json:"deleted_ids"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// Delete removes every flat under the folder named by parentPath + folderKey:
// an empty parentPath targets a whole building, a one-element parentPath
// targets one floor of that building. The token is checked before the target
// set is even resolved; a mismatch touches nothing. Zero matching flats is a
// legal no-op.
func (c *Cascade) Delete(parentPath []string, folderKey, token string) (*CascadeResult, error) {
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.confirmToken)) != 1 {
		return nil, ErrBadConfirmToken
	}

	result := &CascadeResult{ExecutedAt: time.Now()}
	switch len(parentPath) {
	case 0:
		result.Scope = models.DeleteScopeBuilding
		result.Block = folderKey
	case 1:
		result.Scope = models.DeleteScopeFloor
		result.Block = parentPath[0]
		result.Floor = folderKey
	default:
		return nil, ErrBadTarget
	}

	flats, err := c.store.ListFlats(c.projectID)
	if err != nil {
		return nil, fmt.Errorf("cascade: failed to list flats: %w", err)
	}

	var ids []string
	for _, f := range flats {
		if f.Block != result.Block {
			continue
		}
		if result.Scope == models.DeleteScopeFloor && f.Floor != result.Floor {
			continue
		}
		ids = append(ids, f.ID)
	}
	result.TargetCount = len(ids)

	if len(ids) == 0 {
		log.Printf("Cascade: nothing under %s %q, no-op", result.Scope, folderKey)
		return result, nil
	}

	deleted, err := c.store.DeleteFlats(ids, result.Scope, models.DeleteReasonCascade)
	if err != nil {
		return nil, fmt.Errorf("cascade: bulk delete failed: %w", err)
	}
	result.DeletedCount = deleted
	result.DeletedIDs = ids

	log.Printf("Cascade: deleted %d/%d flats under %s %q", deleted, result.TargetCount, result.Scope, folderKey)
	return result, nil
}
