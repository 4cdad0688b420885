package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"construction-backoffice/internal/database"
	"construction-backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation errors. A rejected mutation leaves both the flat and the store
// untouched.
var (
	ErrMissingAmount      = errors.New("ledger: payment amount is required")
	ErrInvalidAmount      = errors.New("ledger: payment amount must be a positive number")
	ErrMissingDate        = errors.New("ledger: payment date is required")
	ErrInvalidDate        = errors.New("ledger: payment date must be YYYY-MM-DD")
	ErrMissingDescription = errors.New("ledger: extra work description is required")
	ErrInvalidCost        = errors.New("ledger: extra work cost must be a number")
	ErrInvalidStatus      = errors.New("ledger: unknown flat status")
	ErrInvalidTotal       = errors.New("ledger: total amount must be a number")
)

// TotalPaid returns the amount collected for a flat. With a non-empty payment
// history it is the sum over the history; otherwise the stored PaidAmount is
// authoritative (records created before history tracking existed).
func TotalPaid(f *models.Flat) decimal.Decimal {
	if len(f.Payments) == 0 {
		return f.PaidAmount
	}
	total := decimal.Zero
	for _, p := range f.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ExtraWorkTotal sums the flat's extra-work costs.
func ExtraWorkTotal(f *models.Flat) decimal.Decimal {
	total := decimal.Zero
	for _, w := range f.ExtraWorks {
		total = total.Add(w.Cost)
	}
	return total
}

// PendingAmount derives the outstanding balance:
// totalAmount + Σ extraWork.cost − totalPaid. It is never stored, and it may
// go negative on over-payment; callers render that as a credit, not an error.
func PendingAmount(f *models.Flat) decimal.Decimal {
	return f.TotalAmount.Add(ExtraWorkTotal(f)).Sub(TotalPaid(f))
}

// Engine applies ledger mutations to flats. Every mutation is two-phase: the
// change is applied to a copy, written to the store, and only committed back
// to the caller's flat once the store write succeeded.
type Engine struct {
	store database.Store
}

// NewEngine creates a ledger engine over the given store.
func NewEngine(store database.Store) *Engine {
	return &Engine{store: store}
}

// PaymentInput is one payment to append. Amount arrives as free text from the
// entry form.
type PaymentInput struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Mode   string `json:"mode"`
}

// AppendPayment validates and appends a payment, recomputing the PaidAmount
// cache over the full history so legacy readers of the cache stay consistent.
func (e *Engine) AppendPayment(f *models.Flat, in PaymentInput) (*models.Payment, error) {
	if in.Amount == "" {
		return nil, ErrMissingAmount
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.Date == "" {
		return nil, ErrMissingDate
	}
	paidAt, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	entry := models.Payment{
		ID:       uuid.NewString(),
		FlatID:   f.ID,
		Amount:   amount,
		PaidAt:   paidAt,
		Mode:     in.Mode,
		Position: len(f.Payments),
	}

	updated := *f
	updated.Payments = append(clonePayments(f.Payments), entry)
	updated.PaidAmount = TotalPaid(&updated)

	if err := e.store.UpdateFlat(&updated); err != nil {
		return nil, fmt.Errorf("ledger: payment not saved: %w", err)
	}
	*f = updated

	e.audit(&models.ChangeLog{
		FlatID:     f.ID,
		ChangeType: models.ChangeTypePayment,
		NewValue:   in.Mode,
		Amount:     &amount,
	})
	return &f.Payments[len(f.Payments)-1], nil
}

// ExtraWorkInput is one extra-work item to append. Cost arrives as free text.
type ExtraWorkInput struct {
	Description string `json:"description"`
	Cost        string `json:"cost"`
	ProofRef    string `json:"proof,omitempty"`
}

// AppendExtraWork validates and appends an extra-work item. The pending
// balance picks the cost up on the next derivation; PaidAmount is unaffected.
func (e *Engine) AppendExtraWork(f *models.Flat, in ExtraWorkInput) (*models.ExtraWork, error) {
	if in.Description == "" {
		return nil, ErrMissingDescription
	}
	if in.Cost == "" {
		return nil, ErrInvalidCost
	}
	cost, err := decimal.NewFromString(in.Cost)
	if err != nil {
		return nil, ErrInvalidCost
	}

	entry := models.ExtraWork{
		FlatID:      f.ID,
		Description: in.Description,
		Cost:        cost,
		ProofRef:    in.ProofRef,
		Position:    len(f.ExtraWorks),
	}

	updated := *f
	updated.ExtraWorks = append(cloneExtraWorks(f.ExtraWorks), entry)

	if err := e.store.UpdateFlat(&updated); err != nil {
		return nil, fmt.Errorf("ledger: extra work not saved: %w", err)
	}
	*f = updated

	e.audit(&models.ChangeLog{
		FlatID:     f.ID,
		ChangeType: models.ChangeTypeExtraWork,
		NewValue:   in.Description,
		Amount:     &cost,
	})
	return &f.ExtraWorks[len(f.ExtraWorks)-1], nil
}

// AppendDocument attaches an opaque file reference to the flat.
func (e *Engine) AppendDocument(f *models.Flat, fileRef, label string) (*models.Document, error) {
	if fileRef == "" {
		return nil, errors.New("ledger: document reference is required")
	}

	updated := *f
	updated.Documents = append(cloneDocuments(f.Documents), models.Document{
		FlatID:   f.ID,
		FileRef:  fileRef,
		Label:    label,
		Position: len(f.Documents),
	})

	if err := e.store.UpdateFlat(&updated); err != nil {
		return nil, fmt.Errorf("ledger: document not saved: %w", err)
	}
	*f = updated
	return &f.Documents[len(f.Documents)-1], nil
}

// SetStatus moves the flat between Available, Booked and Sold. Moving back to
// Available keeps previously entered buyer and financial data; a transient
// status mistake must not lose anything.
func (e *Engine) SetStatus(f *models.Flat, status models.FlatStatus) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	if f.Status == status {
		return nil
	}

	old := f.Status
	updated := *f
	updated.Status = status

	if err := e.store.UpdateFlat(&updated); err != nil {
		return fmt.Errorf("ledger: status not saved: %w", err)
	}
	*f = updated

	e.audit(&models.ChangeLog{
		FlatID:     f.ID,
		ChangeType: models.ChangeTypeStatus,
		OldValue:   string(old),
		NewValue:   string(status),
	})
	return nil
}

// SetTotalAmount edits the agreed deal value. Legal at any time, independent
// of payments already recorded.
func (e *Engine) SetTotalAmount(f *models.Flat, raw string) error {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return ErrInvalidTotal
	}

	old := f.TotalAmount
	updated := *f
	updated.TotalAmount = amount

	if err := e.store.UpdateFlat(&updated); err != nil {
		return fmt.Errorf("ledger: total amount not saved: %w", err)
	}
	*f = updated

	e.audit(&models.ChangeLog{
		FlatID:     f.ID,
		ChangeType: models.ChangeTypeTotalAmount,
		OldValue:   old.String(),
		NewValue:   amount.String(),
		Amount:     &amount,
	})
	return nil
}

// DetailsInput carries direct attribute edits. The (block, floor, flatNumber)
// position is immutable after generation and deliberately absent here.
type DetailsInput struct {
	Type         models.FlatType  `json:"type"`
	Area         *decimal.Decimal `json:"area"`
	Rate         *decimal.Decimal `json:"rate"`
	BuyerName    string           `json:"buyer_name"`
	BuyerAddress string           `json:"buyer_address"`
	BuyerMobile  string           `json:"buyer_mobile"`
}

// UpdateDetails applies attribute edits that do not touch the ledger.
func (e *Engine) UpdateDetails(f *models.Flat, in DetailsInput) error {
	if in.Type != "" && !models.ValidType(in.Type) {
		return fmt.Errorf("ledger: unknown flat type %q", in.Type)
	}

	updated := *f
	if in.Type != "" {
		updated.Type = in.Type
	}
	if in.Area != nil {
		updated.Area = in.Area
	}
	if in.Rate != nil {
		updated.Rate = in.Rate
	}
	updated.BuyerName = in.BuyerName
	updated.BuyerAddress = in.BuyerAddress
	updated.BuyerMobile = in.BuyerMobile

	if err := e.store.UpdateFlat(&updated); err != nil {
		return fmt.Errorf("ledger: details not saved: %w", err)
	}
	*f = updated
	return nil
}

// ReconcileReport summarizes a cache-repair pass.
type ReconcileReport struct {
	Checked    int       `json:"checked"`
	Drifted    int       `json:"drifted"`
	Repaired   int       `json:"repaired"`
	Errors     []string  `json:"errors,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// ReconcileAll recomputes every flat's PaidAmount cache from its payment
// history, repairing and logging any drift. Flats with no history keep their
// stored value: the cache is the sole source of truth there.
func (e *Engine) ReconcileAll(projectID string) (*ReconcileReport, error) {
	flats, err := e.store.ListFlats(projectID)
	if err != nil {
		return nil, fmt.Errorf("ledger: reconcile listing failed: %w", err)
	}

	report := &ReconcileReport{ExecutedAt: time.Now()}
	for i := range flats {
		f := &flats[i]
		report.Checked++

		if len(f.Payments) == 0 {
			continue
		}
		want := TotalPaid(f)
		if f.PaidAmount.Equal(want) {
			continue
		}

		report.Drifted++
		old := f.PaidAmount
		f.PaidAmount = want
		if err := e.store.UpdateFlat(f); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("flat %s: %v", f.ID, err))
			continue
		}
		report.Repaired++

		e.audit(&models.ChangeLog{
			FlatID:     f.ID,
			ChangeType: models.ChangeTypeReconciled,
			OldValue:   old.String(),
			NewValue:   want.String(),
		})
		log.Printf("Ledger: repaired paid-amount cache for flat %s (%s -> %s)", f.ID, old, want)
	}
	return report, nil
}

// audit records a change log entry. Audit failures are logged, never allowed
// to fail the mutation that already committed.
func (e *Engine) audit(c *models.ChangeLog) {
	if err := e.store.AppendChangeLog(c); err != nil {
		log.Printf("Ledger: failed to record change log for flat %s: %v", c.FlatID, err)
	}
}

func clonePayments(in []models.Payment) []models.Payment {
	out := make([]models.Payment, len(in))
	copy(out, in)
	return out
}

func cloneExtraWorks(in []models.ExtraWork) []models.ExtraWork {
	out := make([]models.ExtraWork, len(in))
	copy(out, in)
	return out
}

func cloneDocuments(in []models.Document) []models.Document {
	out := make([]models.Document, len(in))
	copy(out, in)
	return out
}
