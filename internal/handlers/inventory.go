package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"construction-backoffice/internal/database"
	"construction-backoffice/internal/inventory"
	"construction-backoffice/internal/models"
	"construction-backoffice/internal/search"

	"github.com/gin-gonic/gin"
)

// InventoryHandler serves the folder hierarchy, the per-session navigator,
// generation and cascade deletion.
type InventoryHandler struct {
	store     database.Store
	generator *inventory.Generator
	cascade   *inventory.Cascade
	search    *search.SearchClient
	projectID string

	mu       sync.Mutex
	sessions map[string]*inventory.Navigator
}

// NewInventoryHandler creates a new inventory handler. searchClient may be
// nil when search is not configured.
func NewInventoryHandler(store database.Store, projectID, confirmToken string, searchClient *search.SearchClient) *InventoryHandler {
	return &InventoryHandler{
		store:     store,
		generator: inventory.NewGenerator(store, projectID),
		cascade:   inventory.NewCascade(store, projectID, confirmToken),
		search:    searchClient,
		projectID: projectID,
		sessions:  make(map[string]*inventory.Navigator),
	}
}

// navigator returns the navigator for the caller's session, creating one in
// its initial state on first sight.
func (h *InventoryHandler) navigator(c *gin.Context) (*inventory.Navigator, error) {
	session := c.GetHeader("X-Session-ID")
	if session == "" {
		session = "default"
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if nav, ok := h.sessions[session]; ok {
		return nav, nil
	}

	flats, err := h.store.ListFlats(h.projectID)
	if err != nil {
		return nil, err
	}
	nav := inventory.NewNavigator(len(flats))
	h.sessions[session] = nav
	return nav, nil
}

// ListFlats returns the project's flats, optionally filtered by block, floor
// and status.
func (h *InventoryHandler) ListFlats(c *gin.Context) {
	flats, err := h.store.ListFlats(h.projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	block := c.Query("block")
	floor := c.Query("floor")
	status := c.Query("status")

	filtered := make([]models.Flat, 0, len(flats))
	for _, f := range flats {
		if block != "" && f.Block != block {
			continue
		}
		if floor != "" && f.Floor != floor {
			continue
		}
		if status != "" && string(f.Status) != status {
			continue
		}
		filtered = append(filtered, f)
	}

	c.JSON(http.StatusOK, gin.H{
		"flats": filtered,
		"count": len(filtered),
	})
}

// GetFolders projects the folder tree at the requested path: folders at depth
// 0 and 1, leaf flats at depth 2.
func (h *InventoryHandler) GetFolders(c *gin.Context) {
	path := c.QueryArray("path")

	flats, err := h.store.ListFlats(h.projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(path) == 2 {
		leaf := inventory.FlatsAt(flats, path[0], path[1])
		c.JSON(http.StatusOK, gin.H{
			"path":  path,
			"flats": leaf,
			"count": len(leaf),
		})
		return
	}

	folders, err := inventory.Folders(flats, path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":    path,
		"folders": folders,
		"count":   len(folders),
	})
}

// NavigateRequest is one navigator transition.
type NavigateRequest struct {
	Action string `json:"action" binding:"required"`
	Key    string `json:"key"`
	FlatID string `json:"flat_id"`
}

// Navigate applies a transition to the session's navigator and returns the
// resulting view state.
func (h *InventoryHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nav, err := h.navigator(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "enter":
		err = nav.EnterFolder(req.Key)
	case "open":
		err = nav.OpenFlat(req.FlatID)
	case "back":
		err = nav.Back()
	case "setup":
		err = nav.EnterSetup()
	case "cancel_setup":
		err = nav.CancelSetup()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	h.respondNavState(c, nav)
}

// GetNavState returns the session's current navigator state.
func (h *InventoryHandler) GetNavState(c *gin.Context) {
	nav, err := h.navigator(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respondNavState(c, nav)
}

func (h *InventoryHandler) respondNavState(c *gin.Context, nav *inventory.Navigator) {
	c.JSON(http.StatusOK, gin.H{
		"state":         nav.State(),
		"path":          nav.Path(),
		"selected_flat": nav.SelectedFlat(),
	})
}

// GenerateRequest describes one generation batch. Counts arrive as free text
// from the setup form; non-numeric values coerce to zero for that building
// while the rest of the batch proceeds.
type GenerateRequest struct {
	Buildings     string                   `json:"buildings"`
	Floors        string                   `json:"floors"`
	FlatsPerFloor string                   `json:"flats_per_floor"`
	Specs         []inventory.BuildingSpec `json:"specs"`
}

// Generate runs a generation batch and, on success, moves the session's
// navigator out of Setup.
func (h *InventoryHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	specs := req.Specs
	if len(specs) == 0 {
		names := inventory.ParseBuildings(req.Buildings)
		floors := inventory.CoerceCount(req.Floors)
		flatsPerFloor := inventory.CoerceCount(req.FlatsPerFloor)
		for _, name := range names {
			specs = append(specs, inventory.BuildingSpec{
				Name:          name,
				Floors:        floors,
				FlatsPerFloor: flatsPerFloor,
			})
		}
	}

	result, err := h.generator.Generate(specs)
	if err != nil {
		if errors.Is(err, inventory.ErrNoBuildings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if nav, navErr := h.navigator(c); navErr == nil && nav.State() == inventory.StateSetup {
		// Exiting setup after a batch that created anything; a fully failed
		// batch keeps the operator on the setup screen.
		if result.TotalCreated > 0 {
			_ = nav.FinishSetup()
		}
	}

	h.reindex()
	c.JSON(http.StatusOK, result)
}

// CascadeDeleteRequest targets a whole building (empty path) or one floor
// (path = [block]) for deletion.
type CascadeDeleteRequest struct {
	Path         []string `json:"path"`
	Key          string   `json:"key" binding:"required"`
	ConfirmToken string   `json:"confirm_token"`
}

// CascadeDelete removes every flat under the targeted folder.
func (h *InventoryHandler) CascadeDelete(c *gin.Context) {
	var req CascadeDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.cascade.Delete(req.Path, req.Key, req.ConfirmToken)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrBadConfirmToken):
			c.JSON(http.StatusForbidden, gin.H{"error": "confirmation token mismatch, nothing deleted"})
		case errors.Is(err, inventory.ErrBadTarget):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if h.search != nil && len(result.DeletedIDs) > 0 {
		if err := h.search.RemoveFlats(result.DeletedIDs); err != nil {
			log.Printf("Inventory: failed to drop deleted flats from search index: %v", err)
		}
	}

	c.JSON(http.StatusOK, result)
}

// DeleteFlat removes a single flat.
func (h *InventoryHandler) DeleteFlat(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteFlat(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flat not found"})
		return
	}

	if h.search != nil {
		if err := h.search.RemoveFlats([]string{id}); err != nil {
			log.Printf("Inventory: failed to drop flat %s from search index: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// reindex pushes the full flat list into the search index, best effort.
func (h *InventoryHandler) reindex() {
	if h.search == nil {
		return
	}
	flats, err := h.store.ListFlats(h.projectID)
	if err != nil {
		log.Printf("Inventory: reindex listing failed: %v", err)
		return
	}
	if err := h.search.IndexFlats(flats); err != nil {
		log.Printf("Inventory: reindex failed: %v", err)
	}
}
