package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoanStatus is the state of a loan. The only transition is
// active → paid, paid is terminal.
//
// swagger:enum LoanStatus
type LoanStatus string

const (
	LoanActive LoanStatus = "active"
	LoanPaid   LoanStatus = "paid"
)

// Loan tracks a debt between two accounts of the same owner, accruing
// interest once per period while active.
type Loan struct {
	DefaultModel
	OwnerID           uuid.UUID       `json:"ownerId" gorm:"index"`
	LenderAccountID   uuid.UUID       `json:"lenderAccountId" gorm:"check:lender_borrower_different,lender_account_id != borrower_account_id"`
	BorrowerAccountID uuid.UUID       `json:"borrowerAccountId"`
	Principal         decimal.Decimal `json:"principal" gorm:"type:DECIMAL(20,8)"`
	InterestRate      decimal.Decimal `json:"interestRate" gorm:"type:DECIMAL(8,4)"` // Per period, e.g. 0.02 for 2% weekly
	Outstanding       decimal.Decimal `json:"outstanding" gorm:"type:DECIMAL(20,8)"`
	TotalInterest     decimal.Decimal `json:"totalInterest" gorm:"type:DECIMAL(20,8)"`
	AccruedThrough    types.Week      `json:"accruedThrough"` // Latest period interest has been accrued for
	Status            LoanStatus      `json:"status"`
}

// BeforeSave validates the loan invariants.
func (l *Loan) BeforeSave(_ *gorm.DB) error {
	if !l.Principal.IsPositive() {
		return fmt.Errorf("%w: the principal must be positive", ErrInvalidAmount)
	}

	if l.Outstanding.IsNegative() {
		return fmt.Errorf("%w: the outstanding balance must not be negative", ErrInvalidAmount)
	}

	if l.InterestRate.IsNegative() {
		return fmt.Errorf("%w: the interest rate must not be negative", ErrInvalidAmount)
	}

	if l.LenderAccountID == l.BorrowerAccountID {
		return ErrSameAccount
	}

	return nil
}

// Transactions returns all ledger rows recorded for this loan
// (disbursement, repayments, mirrored accruals), newest first.
func (l Loan) Transactions(db *gorm.DB) []Transaction {
	var transactions []Transaction

	db.Where(&Transaction{LoanID: &l.ID}).
		Order("strftime('%Y-%m-%d %H:%M:%f', transactions.date) DESC").
		Order("strftime('%Y-%m-%d %H:%M:%f', transactions.created_at) DESC").
		Find(&transactions)
	return transactions
}

// AccrualPolicy configures the bookkeeping of interest accrual.
//
// Accrual always inflates the loan's outstanding balance. With
// MirrorToLender set, each accrual additionally posts an interest_accrual
// credit to the lender account so earned interest shows up as cash.
type AccrualPolicy struct {
	MirrorToLender bool
}

// DisburseLoan moves the principal from the lender to the borrower and
// creates the loan. The disbursement transfer and the loan row commit
// atomically.
//
// A zero rate means the owner's default interest rate applies.
func DisburseLoan(db *gorm.DB, ownerID, lenderID, borrowerID, periodID uuid.UUID, principal, rate decimal.Decimal) (Loan, error) {
	if !principal.IsPositive() {
		return Loan{}, fmt.Errorf("%w: the principal must be positive", ErrInvalidAmount)
	}

	if lenderID == borrowerID {
		return Loan{}, ErrSameAccount
	}

	var loan Loan
	err := db.Transaction(func(tx *gorm.DB) error {
		if rate.IsZero() {
			settings, err := SettingsFor(tx, ownerID)
			if err != nil {
				return err
			}
			rate = settings.DefaultInterestRate
		}

		loan = Loan{
			OwnerID:           ownerID,
			LenderAccountID:   lenderID,
			BorrowerAccountID: borrowerID,
			Principal:         principal,
			InterestRate:      rate,
			Outstanding:       principal,
			Status:            LoanActive,
		}

		err := tx.Create(&loan).Error
		if err != nil {
			return err
		}

		_, _, err = postTransferTx(tx, lenderID, borrowerID, periodID, principal, KindLoanDisbursement, "Loan disbursement", &loan.ID)
		return err
	})
	if err != nil {
		return Loan{}, err
	}

	return loan, nil
}

// AccrueInterest adds one period's interest to the loan.
//
// Accrual is idempotent per period: a period at or before the loan's
// AccruedThrough watermark is a no-op. Paid loans never accrue. The
// returned amount is the interest added, zero for no-ops.
func AccrueInterest(db *gorm.DB, loanID, periodID uuid.UUID, policy AccrualPolicy) (decimal.Decimal, error) {
	interest := decimal.Zero

	err := db.Transaction(func(tx *gorm.DB) error {
		var loan Loan
		err := tx.First(&loan, "id = ?", loanID).Error
		if err != nil {
			return err
		}

		if loan.Status != LoanActive {
			return nil
		}

		var period WeeklyPeriod
		err = tx.First(&period, "id = ?", periodID).Error
		if err != nil {
			return err
		}

		if !loan.AccruedThrough.IsZero() && !period.StartDate.After(loan.AccruedThrough) {
			// Already accrued for this period
			return nil
		}

		interest = loan.Outstanding.Mul(loan.InterestRate).Round(2)

		err = tx.Model(&loan).Updates(map[string]interface{}{
			"outstanding":     loan.Outstanding.Add(interest),
			"total_interest":  loan.TotalInterest.Add(interest),
			"accrued_through": period.StartDate,
		}).Error
		if err != nil {
			return err
		}

		if policy.MirrorToLender && interest.IsPositive() {
			_, err = post(tx, loan.LenderAccountID, period.ID, interest, KindInterestAccrual, "Loan interest", nil, &loan.ID)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return interest, nil
}

// RepayLoan applies a repayment: a transfer from the borrower back to the
// lender that reduces the outstanding balance. When the balance reaches
// zero the loan transitions to paid.
//
// A repayment exceeding the outstanding balance is rejected with
// ErrOverpayment and applies nothing; the caller must resubmit the
// correct amount.
func RepayLoan(db *gorm.DB, loanID, periodID uuid.UUID, amount decimal.Decimal) (Loan, error) {
	var loan Loan

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&loan, "id = ?", loanID).Error
		if err != nil {
			return err
		}

		if loan.Status != LoanActive {
			return ErrLoanNotActive
		}

		if !amount.IsPositive() {
			return fmt.Errorf("%w: the repayment must be positive", ErrInvalidAmount)
		}

		if amount.GreaterThan(loan.Outstanding) {
			return fmt.Errorf("%w: outstanding balance is %s", ErrOverpayment, loan.Outstanding)
		}

		_, _, err = postTransferTx(tx, loan.BorrowerAccountID, loan.LenderAccountID, periodID, amount, KindLoanRepayment, "Loan repayment", &loan.ID)
		if err != nil {
			return err
		}

		outstanding := loan.Outstanding.Sub(amount)
		status := loan.Status
		if outstanding.IsZero() {
			status = LoanPaid
		}

		err = tx.Model(&loan).Updates(map[string]interface{}{
			"outstanding": outstanding,
			"status":      status,
		}).Error
		if err != nil {
			return err
		}

		loan.Outstanding = outstanding
		loan.Status = status
		return nil
	})
	if err != nil {
		return Loan{}, err
	}

	return loan, nil
}
