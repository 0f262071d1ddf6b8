package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionKind describes why money moved.
//
// swagger:enum TransactionKind
type TransactionKind string

const (
	KindIncome           TransactionKind = "income"
	KindExpense          TransactionKind = "expense"
	KindTransfer         TransactionKind = "transfer"
	KindLoanDisbursement TransactionKind = "loan_disbursement"
	KindLoanRepayment    TransactionKind = "loan_repayment"
	KindInterestAccrual  TransactionKind = "interest_accrual"
)

// Valid reports whether the kind is one of the defined variants.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer, KindLoanDisbursement, KindLoanRepayment, KindInterestAccrual:
		return true
	}

	return false
}

// Transaction is a single money movement on an account within a period.
//
// Rows are append-only: corrections are modeled as reversing transactions,
// never as edits. The amount is signed, credits increase the account
// balance and debits decrease it.
type Transaction struct {
	DefaultModel
	OwnerID     uuid.UUID       `json:"ownerId" gorm:"index"`
	AccountID   uuid.UUID       `json:"accountId" gorm:"index"`
	Account     Account         `json:"-"`
	PeriodID    uuid.UUID       `json:"periodId" gorm:"index"`
	Period      WeeklyPeriod    `json:"-"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"` // Time of day is only used for sorting
	TransferID  *uuid.UUID      `json:"transferId" gorm:"index"` // Set on both legs of a transfer pair
	LoanID      *uuid.UUID      `json:"loanId" gorm:"index"`     // Set on loan disbursements, repayments and accruals
}

// BeforeSave
//   - rejects zero amounts and unknown kinds
//   - sets the timezone for the Date to UTC
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Description = strings.TrimSpace(t.Description)

	if t.Amount.IsZero() {
		return fmt.Errorf("%w: the amount must not be zero", ErrInvalidAmount)
	}

	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q is not a valid transaction kind", ErrInvalidAmount, t.Kind)
	}

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	return nil
}

// AfterFind enforces dates to be in UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

// Post appends a transaction to the ledger and updates the account's
// cached balance in the same database transaction.
//
// This is the only primitive that mutates balances. All higher-level
// operations (transfers, allocations, loans) are expressed through it.
func Post(db *gorm.DB, accountID, periodID uuid.UUID, amount decimal.Decimal, kind TransactionKind, description string) (Transaction, error) {
	var transaction Transaction

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		transaction, err = post(tx, accountID, periodID, amount, kind, description, nil, nil)
		return err
	})
	if err != nil {
		return Transaction{}, err
	}

	return transaction, nil
}

// post is the transactional core of Post. It must run inside an open
// database transaction so that multi-leg operations stay atomic.
func post(tx *gorm.DB, accountID, periodID uuid.UUID, amount decimal.Decimal, kind TransactionKind, description string, transferID, loanID *uuid.UUID) (Transaction, error) {
	if amount.IsZero() {
		return Transaction{}, fmt.Errorf("%w: the amount must not be zero", ErrInvalidAmount)
	}

	var account Account
	err := tx.First(&account, "id = ?", accountID).Error
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	var period WeeklyPeriod
	err = tx.First(&period, "id = ?", periodID).Error
	if err != nil {
		return Transaction{}, err
	}

	if period.OwnerID != account.OwnerID {
		return Transaction{}, fmt.Errorf("%w: the period belongs to a different owner", ErrUnknownAccount)
	}

	transaction := Transaction{
		OwnerID:     account.OwnerID,
		AccountID:   account.ID,
		PeriodID:    period.ID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		TransferID:  transferID,
		LoanID:      loanID,
	}

	err = tx.Create(&transaction).Error
	if err != nil {
		return Transaction{}, err
	}

	// UpdateColumn skips the account hooks and lets the database do the
	// addition, so concurrent posts to the same account cannot lose an
	// update to a stale read.
	err = tx.Model(&Account{}).
		Where("id = ?", account.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return Transaction{}, err
	}

	return transaction, nil
}

// PostTransfer debits the source account and credits the destination
// account by the same amount as one atomic unit. If either leg fails,
// neither is committed.
//
// The amount must be positive; the direction is given by the accounts.
func PostTransfer(db *gorm.DB, sourceID, destinationID, periodID uuid.UUID, amount decimal.Decimal, kind TransactionKind, description string) (outgoing, incoming Transaction, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		outgoing, incoming, err = postTransferTx(tx, sourceID, destinationID, periodID, amount, kind, description, nil)
		return err
	})
	if err != nil {
		return Transaction{}, Transaction{}, err
	}

	return outgoing, incoming, nil
}

// postTransferTx is the transactional core of PostTransfer. It must run
// inside an open database transaction.
func postTransferTx(tx *gorm.DB, sourceID, destinationID, periodID uuid.UUID, amount decimal.Decimal, kind TransactionKind, description string, loanID *uuid.UUID) (outgoing, incoming Transaction, err error) {
	if sourceID == destinationID {
		return Transaction{}, Transaction{}, ErrSameAccount
	}

	if !amount.IsPositive() {
		return Transaction{}, Transaction{}, fmt.Errorf("%w: the transfer amount must be positive", ErrInvalidAmount)
	}

	if kind == "" {
		kind = KindTransfer
	}

	transferID := uuid.New()

	outgoing, err = post(tx, sourceID, periodID, amount.Neg(), kind, description, &transferID, loanID)
	if err != nil {
		return Transaction{}, Transaction{}, err
	}

	incoming, err = post(tx, destinationID, periodID, amount, kind, description, &transferID, loanID)
	if err != nil {
		return Transaction{}, Transaction{}, err
	}

	return outgoing, incoming, nil
}

// TransactionsInRange returns the account's transactions for periods
// starting in [from, to], ordered by date descending, newest first.
func TransactionsInRange(db *gorm.DB, accountID uuid.UUID, from, to types.Week) ([]Transaction, error) {
	var transactions []Transaction

	err := db.
		Joins("JOIN weekly_periods ON weekly_periods.id = transactions.period_id").
		Where("transactions.account_id = ?", accountID).
		Where("date(weekly_periods.start_date) >= date(?)", from.Start()).
		Where("date(weekly_periods.start_date) <= date(?)", to.Start()).
		Order("strftime('%Y-%m-%d %H:%M:%f', transactions.date) DESC").
		Order("strftime('%Y-%m-%d %H:%M:%f', transactions.created_at) DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
