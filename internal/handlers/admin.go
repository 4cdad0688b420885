package handlers

import (
	"log"
	"net/http"
	"strconv"

	"construction-backoffice/internal/database"
	"construction-backoffice/internal/ledger"
	"construction-backoffice/internal/models"
	"construction-backoffice/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	store     database.Store
	scheduler *scheduler.Scheduler
	projectID string
}

// NewAdminHandler creates a new admin handler. sched may be nil when the
// reconciliation scheduler is not wired.
func NewAdminHandler(store database.Store, sched *scheduler.Scheduler, projectID string) *AdminHandler {
	return &AdminHandler{
		store:     store,
		scheduler: sched,
		projectID: projectID,
	}
}

// GetStats returns inventory and ledger statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	flats, err := h.store.ListFlats(h.projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats := make(map[string]interface{})

	statusCounts := map[models.FlatStatus]int{}
	typeCounts := map[models.FlatType]int{}
	totalValue := decimal.Zero
	totalCollected := decimal.Zero
	totalPending := decimal.Zero

	for i := range flats {
		f := &flats[i]
		statusCounts[f.Status]++
		typeCounts[f.Type]++
		totalValue = totalValue.Add(f.TotalAmount)
		totalCollected = totalCollected.Add(ledger.TotalPaid(f))
		totalPending = totalPending.Add(ledger.PendingAmount(f))
	}

	stats["flats"] = map[string]interface{}{
		"total":     len(flats),
		"available": statusCounts[models.FlatStatusAvailable],
		"booked":    statusCounts[models.FlatStatusBooked],
		"sold":      statusCounts[models.FlatStatusSold],
	}
	stats["types"] = typeCounts
	stats["financials"] = map[string]interface{}{
		"total_deal_value": totalValue,
		"total_collected":  totalCollected,
		"total_pending":    totalPending,
	}

	c.JSON(http.StatusOK, stats)
}

// GetBlockStats returns per-block inventory and collection figures
func (h *AdminHandler) GetBlockStats(c *gin.Context) {
	flats, err := h.store.ListFlats(h.projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type BlockStat struct {
		Block     string          `json:"block"`
		Flats     int             `json:"flats"`
		Sold      int             `json:"sold"`
		Collected decimal.Decimal `json:"collected"`
		Pending   decimal.Decimal `json:"pending"`
	}

	byBlock := map[string]*BlockStat{}
	var order []string
	for i := range flats {
		f := &flats[i]
		bs, ok := byBlock[f.Block]
		if !ok {
			bs = &BlockStat{Block: f.Block, Collected: decimal.Zero, Pending: decimal.Zero}
			byBlock[f.Block] = bs
			order = append(order, f.Block)
		}
		bs.Flats++
		if f.Status == models.FlatStatusSold {
			bs.Sold++
		}
		bs.Collected = bs.Collected.Add(ledger.TotalPaid(f))
		bs.Pending = bs.Pending.Add(ledger.PendingAmount(f))
	}

	stats := make([]BlockStat, 0, len(order))
	for _, b := range order {
		stats = append(stats, *byBlock[b])
	}

	c.JSON(http.StatusOK, gin.H{
		"block_stats": stats,
		"count":       len(stats),
	})
}

// GetRecentChanges returns recent ledger and status changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.store.RecentChangeLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.store.RecentDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// TriggerReconciliation manually triggers the nightly reconciliation
func (h *AdminHandler) TriggerReconciliation(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available",
		})
		return
	}

	log.Println("Admin: Manual reconciliation trigger requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("Admin: Manual reconciliation failed: %v", err)
		} else {
			log.Println("Admin: Manual reconciliation completed successfully")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reconciliation job started",
		"status":  "running",
	})
}
