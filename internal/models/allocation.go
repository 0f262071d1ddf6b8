package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocation records one template-driven or manual distribution of funds
// from a source account into a destination account for a period.
//
// Under the hood every allocation is a transfer pair in the ledger; both
// the allocation row and its two transaction legs commit atomically.
type Allocation struct {
	DefaultModel
	OwnerID              uuid.UUID       `json:"ownerId" gorm:"index"`
	TemplateID           *uuid.UUID      `json:"templateId" gorm:"index"` // nil for manual allocations
	SourceAccountID      uuid.UUID       `json:"sourceAccountId" gorm:"check:source_destination_different,source_account_id != destination_account_id"`
	DestinationAccountID uuid.UUID       `json:"destinationAccountId"`
	PeriodID             uuid.UUID       `json:"periodId" gorm:"index"`
	Amount               decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Processed            bool            `json:"processed"`
	PartiallyFunded      bool            `json:"partiallyFunded"` // The pool could not cover the template's nominal amount
	Note                 string          `json:"note"`
}

// BeforeSave validates the allocation invariants.
func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: the allocation amount must be positive", ErrInvalidAmount)
	}

	if a.SourceAccountID == a.DestinationAccountID {
		return ErrSameAccount
	}

	return nil
}

// TemplateOutcome describes what happened to one template during a run.
//
// swagger:enum TemplateOutcome
type TemplateOutcome string

const (
	OutcomeFunded           TemplateOutcome = "funded"
	OutcomePartiallyFunded  TemplateOutcome = "partially_funded"
	OutcomeSkipped          TemplateOutcome = "skipped"           // Pool exhausted or range floor not covered
	OutcomeAlreadyProcessed TemplateOutcome = "already_processed" // Idempotence guard, see RunAllocation
	OutcomeFailed           TemplateOutcome = "failed"
)

// TemplateResult is the audit record for a single template in a run.
// Templates that produce no allocation still appear here.
type TemplateResult struct {
	TemplateID uuid.UUID       `json:"templateId"`
	Outcome    TemplateOutcome `json:"outcome"`
	Amount     decimal.Decimal `json:"amount"`
	Error      string          `json:"error,omitempty"`
}

// AllocationRun is the report of one allocation engine run for a period.
type AllocationRun struct {
	PeriodID    uuid.UUID        `json:"periodId"`
	Pool        decimal.Decimal  `json:"pool"`
	Remaining   decimal.Decimal  `json:"remaining"`
	Results     []TemplateResult `json:"results"`
	Allocations []Allocation     `json:"allocations"`
}

// RunAllocation distributes the pool across the owner's active templates
// for the given period, in priority order, and records every distribution
// as an Allocation plus a transfer pair from the source account.
//
// The pool amount is an input: what counts as allocatable income is the
// caller's policy, see AvailablePool for the conventional computation.
//
// The run is idempotent. Templates that already have a processed
// allocation for the period are reported as already_processed and skipped
// unless reprocess is set. A failing template (e.g. its destination
// account was deleted) is isolated: it is reported and the remaining
// templates still run.
func RunAllocation(db *gorm.DB, ownerID, periodID, sourceAccountID uuid.UUID, pool decimal.Decimal, reprocess bool) (AllocationRun, error) {
	if !pool.IsPositive() {
		return AllocationRun{}, fmt.Errorf("%w: got %s", ErrInvalidPool, pool)
	}

	var source Account
	err := db.First(&source, "id = ?", sourceAccountID).Error
	if err != nil {
		return AllocationRun{}, fmt.Errorf("%w: %s", ErrUnknownAccount, sourceAccountID)
	}

	var period WeeklyPeriod
	err = db.First(&period, "id = ?", periodID).Error
	if err != nil {
		return AllocationRun{}, err
	}

	if source.OwnerID != ownerID || period.OwnerID != ownerID {
		return AllocationRun{}, fmt.Errorf("%w: the source account and period must belong to the owner", ErrUnknownAccount)
	}

	templates, err := ActiveTemplates(db, ownerID)
	if err != nil {
		return AllocationRun{}, err
	}

	run := AllocationRun{
		PeriodID:  periodID,
		Pool:      pool,
		Remaining: pool,
		Results:   make([]TemplateResult, 0, len(templates)),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, template := range templates {
			result := runTemplate(tx, &run, period, source, template, reprocess)
			run.Results = append(run.Results, result)
		}

		return nil
	})
	if err != nil {
		return AllocationRun{}, err
	}

	return run, nil
}

// runTemplate applies a single template against the run's remaining pool.
func runTemplate(tx *gorm.DB, run *AllocationRun, period WeeklyPeriod, source Account, template BudgetTemplate, reprocess bool) TemplateResult {
	result := TemplateResult{TemplateID: template.ID, Amount: decimal.Zero}

	if !reprocess {
		var count int64
		err := tx.Model(&Allocation{}).
			Where(&Allocation{TemplateID: &template.ID, PeriodID: period.ID, Processed: true}).
			Count(&count).Error
		if err != nil {
			result.Outcome = OutcomeFailed
			result.Error = err.Error()
			return result
		}

		if count > 0 {
			result.Outcome = OutcomeAlreadyProcessed
			return result
		}
	}

	amount, partial, skip := template.share(run.Pool, run.Remaining)
	if skip {
		result.Outcome = OutcomeSkipped
		return result
	}

	// The nested transaction is a savepoint: when a template fails after
	// its debit leg was written, only this template's rows roll back and
	// the run continues with a consistent ledger.
	var allocation Allocation
	err := tx.Transaction(func(tx *gorm.DB) error {
		var err error
		allocation, err = allocate(tx, Allocation{
			OwnerID:              template.OwnerID,
			TemplateID:           &template.ID,
			SourceAccountID:      source.ID,
			DestinationAccountID: template.AccountID,
			PeriodID:             period.ID,
			Amount:               amount,
			PartiallyFunded:      partial,
			Note:                 fmt.Sprintf("Auto-allocation: %s", template.Type),
		})
		return err
	})
	if err != nil {
		result.Outcome = OutcomeFailed
		if errors.Is(err, ErrUnknownAccount) {
			result.Error = fmt.Sprintf("%s: %s", ErrUnknownAccount, template.AccountID)
		} else {
			result.Error = err.Error()
		}
		return result
	}

	run.Remaining = run.Remaining.Sub(amount)
	run.Allocations = append(run.Allocations, allocation)

	result.Amount = amount
	result.Outcome = OutcomeFunded
	if partial {
		result.Outcome = OutcomePartiallyFunded
	}
	return result
}

// share computes the amount a template receives.
//
// The percentage share is computed against the original pool, not the
// shrinking remainder, so template order does not change a template's
// nominal share; only the cap depends on the remainder. A range template
// whose floor the remainder cannot cover is skipped entirely rather than
// funded below its stated minimum.
func (t BudgetTemplate) share(pool, remaining decimal.Decimal) (amount decimal.Decimal, partial, skip bool) {
	if !remaining.IsPositive() {
		return decimal.Zero, false, true
	}

	switch t.Type {
	case AllocationFixed:
		amount = decimal.Min(t.Amount, remaining)
		return amount, amount.LessThan(t.Amount), false

	case AllocationPercentage:
		nominal := pool.Mul(t.Percentage).Div(decimal.NewFromInt(100)).Round(2)
		amount = decimal.Min(nominal, remaining)
		return amount, amount.LessThan(nominal), false

	case AllocationRange:
		if remaining.LessThan(t.MinAmount) {
			return decimal.Zero, false, true
		}
		return decimal.Min(t.MaxAmount, remaining), false, false
	}

	// Unreachable, BeforeSave rejects unknown types
	return decimal.Zero, false, true
}

// Allocate records a manual allocation: a transfer pair plus an Allocation
// row without a template reference.
func Allocate(db *gorm.DB, allocation Allocation) (Allocation, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		allocation, err = allocate(tx, allocation)
		return err
	})
	if err != nil {
		return Allocation{}, err
	}

	return allocation, nil
}

// allocate posts the transfer pair for an allocation and persists the
// allocation itself. It must run inside an open database transaction.
func allocate(tx *gorm.DB, allocation Allocation) (Allocation, error) {
	_, _, err := postTransferTx(tx, allocation.SourceAccountID, allocation.DestinationAccountID, allocation.PeriodID, allocation.Amount, KindTransfer, allocation.Note, nil)
	if err != nil {
		return Allocation{}, err
	}

	allocation.Processed = true
	err = tx.Create(&allocation).Error
	if err != nil {
		return Allocation{}, err
	}

	return allocation, nil
}

// AvailablePool computes the conventional allocatable pool for a period:
// the net of income and expense transactions minus what has already been
// allocated. Callers may pass this to RunAllocation or substitute their
// own policy.
func AvailablePool(db *gorm.DB, ownerID, periodID uuid.UUID) (decimal.Decimal, error) {
	var transactions []Transaction
	err := db.
		Where(&Transaction{OwnerID: ownerID, PeriodID: periodID}).
		Where("kind IN ?", []TransactionKind{KindIncome, KindExpense}).
		Find(&transactions).Error
	if err != nil {
		return decimal.Zero, err
	}

	pool := decimal.Zero
	for _, t := range transactions {
		pool = pool.Add(t.Amount)
	}

	var allocations []Allocation
	err = db.
		Where(&Allocation{OwnerID: ownerID, PeriodID: periodID, Processed: true}).
		Find(&allocations).Error
	if err != nil {
		return decimal.Zero, err
	}

	for _, a := range allocations {
		pool = pool.Sub(a.Amount)
	}

	return pool, nil
}
