package scheduler

import (
	"fmt"
	"log"

	"construction-backoffice/internal/config"
	"construction-backoffice/internal/database"
	"construction-backoffice/internal/ledger"
	"construction-backoffice/internal/search"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the nightly ledger reconciliation: every flat's paid-amount
// cache is recomputed from its payment history, drift is repaired and logged,
// and the search index is refreshed from the repaired data.
type Scheduler struct {
	cron      *cron.Cron
	store     database.Store
	engine    *ledger.Engine
	search    *search.SearchClient
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler. searchClient may be nil when search
// is not configured; reconciliation still runs.
func NewScheduler(store database.Store, searchClient *search.SearchClient, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		engine: ledger.NewEngine(store),
		search: searchClient,
		config: cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.ReconcileEnabled {
		log.Println("Scheduler: Nightly reconciliation is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Scheduler.ReconcileTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting nightly reconciliation...")
		if err := s.runReconciliation(); err != nil {
			log.Printf("Scheduler: Reconciliation failed: %v", err)
		} else {
			log.Println("Scheduler: Reconciliation completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with nightly run at %s (cron: %s)", s.config.Scheduler.ReconcileTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// runReconciliation executes the reconciliation routine
func (s *Scheduler) runReconciliation() error {
	report, err := s.engine.ReconcileAll(s.config.Inventory.ProjectID)
	if err != nil {
		return err
	}

	log.Printf("Scheduler: Reconciliation checked %d flats, repaired %d of %d drifted",
		report.Checked, report.Repaired, report.Drifted)
	for _, e := range report.Errors {
		log.Printf("Scheduler: Reconciliation error: %s", e)
	}

	// Refresh the search index from the repaired data. Search outages are
	// non-fatal; the index catches up on the next run.
	if s.search != nil {
		flats, err := s.store.ListFlats(s.config.Inventory.ProjectID)
		if err != nil {
			return err
		}
		if err := s.search.IndexFlats(flats); err != nil {
			log.Printf("Scheduler: Failed to reindex flats: %v", err)
		} else {
			log.Printf("Scheduler: Reindexed %d flats", len(flats))
		}
	}

	return nil
}

// RunNow immediately executes the reconciliation job (for manual trigger)
func (s *Scheduler) RunNow() error {
	log.Println("Scheduler: Manual trigger - starting reconciliation...")
	return s.runReconciliation()
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time '%s', using default 02:00", timeStr)
	return "0 2 * * *"
}
