package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountCategory classifies an account within the chart of accounts.
//
// The category of a child account always matches the category of its
// root ancestor, see checkHierarchy.
//
// swagger:enum AccountCategory
type AccountCategory string

const (
	CategoryIncome  AccountCategory = "income"
	CategoryExpense AccountCategory = "expense"
	CategorySavings AccountCategory = "savings"
	CategoryDebt    AccountCategory = "debt"
)

// Valid reports whether the category is one of the defined variants.
func (c AccountCategory) Valid() bool {
	switch c {
	case CategoryIncome, CategoryExpense, CategorySavings, CategoryDebt:
		return true
	}

	return false
}

// Account is a node in the hierarchical chart of accounts.
//
// The Balance field is a cached projection of the transaction ledger.
// It is updated by Post and verified against the ledger fold by the
// integrity sweep; RecomputedBalance is the correctness baseline.
type Account struct {
	DefaultModel
	OwnerID      uuid.UUID       `json:"ownerId" gorm:"uniqueIndex:account_owner_parent_name"`
	ParentID     *uuid.UUID      `json:"parentId" gorm:"uniqueIndex:account_owner_parent_name"`
	Parent       *Account        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name         string          `json:"name" gorm:"uniqueIndex:account_owner_parent_name"`
	Note         string          `json:"note"`
	Category     AccountCategory `json:"category"`
	TargetAmount decimal.Decimal `json:"targetAmount" gorm:"type:DECIMAL(20,8)"` // Optional goal amount, zero when unset
	Balance      decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)"`      // Cached balance, see RecomputedBalance
	Archived     bool            `json:"archived"`
	SortOrder    int             `json:"sortOrder"`
}

// BeforeSave trims whitespace from all strings and verifies the category.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	if !a.Category.Valid() {
		return fmt.Errorf("%w: %q is not a valid account category", ErrInvalidHierarchy, a.Category)
	}

	return nil
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Account)
	return toSave.checkHierarchy(tx)
}

// BeforeUpdate verifies the hierarchy before committing an update
// to the database. Reparenting re-runs the full cycle and category
// validation against the new parent chain.
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	if !tx.Statement.Changed("ParentID") && !tx.Statement.Changed("OwnerID") && !tx.Statement.Changed("Category") {
		return nil
	}

	toSave, ok := tx.Statement.Dest.(Account)
	if !ok {
		p := tx.Statement.Dest.(*Account)
		toSave = *p
	}
	// Fill fields the update does not touch from the loaded model
	toSave.ID = a.ID
	toSave.OwnerID = a.OwnerID
	if toSave.Category == "" {
		toSave.Category = a.Category
	}
	if !tx.Statement.Changed("ParentID") {
		toSave.ParentID = a.ParentID
	}

	return toSave.checkHierarchy(tx)
}

// checkHierarchy verifies the invariants of the account tree:
//
//   - the parent exists, belongs to the same owner and is not archived
//   - the parent chain contains no cycle
//   - the category matches the root ancestor's category
func (a Account) checkHierarchy(tx *gorm.DB) error {
	if a.ParentID == nil {
		return nil
	}

	if a.ID != uuid.Nil && *a.ParentID == a.ID {
		return fmt.Errorf("%w: an account cannot be its own parent", ErrInvalidHierarchy)
	}

	var parent Account
	err := tx.First(&parent, "id = ?", *a.ParentID).Error
	if err != nil {
		return fmt.Errorf("%w: the parent account does not exist", ErrInvalidHierarchy)
	}

	if parent.OwnerID != a.OwnerID {
		return fmt.Errorf("%w: the parent account belongs to a different owner", ErrInvalidHierarchy)
	}

	if parent.Archived {
		return fmt.Errorf("%w: the parent account is archived", ErrInvalidHierarchy)
	}

	// Walk the parent chain from the proposed parent to the root. If the
	// account itself appears on the way, the reparent would create a cycle.
	root := parent
	seen := map[uuid.UUID]bool{}
	for {
		if root.ID == a.ID {
			return fmt.Errorf("%w: the change would create a cycle", ErrInvalidHierarchy)
		}

		if seen[root.ID] {
			return fmt.Errorf("%w: the existing parent chain contains a cycle", ErrInvalidHierarchy)
		}
		seen[root.ID] = true

		if root.ParentID == nil {
			break
		}

		var next Account
		err := tx.First(&next, "id = ?", *root.ParentID).Error
		if err != nil {
			return fmt.Errorf("%w: the parent chain references a missing account", ErrInvalidHierarchy)
		}
		root = next
	}

	if a.Category != root.Category {
		return fmt.Errorf("%w: the category %q does not match the root ancestor's category %q", ErrInvalidHierarchy, a.Category, root.Category)
	}

	return nil
}

// Transactions returns all transactions for this account, newest first.
func (a Account) Transactions(db *gorm.DB) []Transaction {
	var transactions []Transaction

	db.Where(&Transaction{AccountID: a.ID}).
		Order("strftime('%Y-%m-%d %H:%M:%f', transactions.date) DESC").
		Order("strftime('%Y-%m-%d %H:%M:%f', transactions.created_at) DESC").
		Find(&transactions)
	return transactions
}

// RecomputedBalance calculates the balance of the account by folding the
// transaction ledger. When asOf is set, only transactions in periods up to
// and including that week are counted.
//
// This is the correctness baseline for the cached Balance field.
func (a Account) RecomputedBalance(db *gorm.DB, asOf *types.Week) (decimal.Decimal, error) {
	query := db.
		Model(&Transaction{}).
		Where(&Transaction{AccountID: a.ID})

	if asOf != nil {
		query = query.
			Joins("JOIN weekly_periods ON weekly_periods.id = transactions.period_id").
			Where("date(weekly_periods.start_date) <= date(?)", asOf.Start())
	}

	var transactions []Transaction
	err := query.Find(&transactions).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, t := range transactions {
		balance = balance.Add(t.Amount)
	}

	return balance, nil
}

// Path returns the display path of the account from its root ancestor,
// e.g. "Income > Salary".
func (a Account) Path(db *gorm.DB) (string, error) {
	parts := []string{a.Name}

	current := a
	for current.ParentID != nil {
		var parent Account
		err := db.First(&parent, "id = ?", *current.ParentID).Error
		if err != nil {
			return "", err
		}

		parts = append([]string{parent.Name}, parts...)
		current = parent
	}

	return strings.Join(parts, " > "), nil
}

// AccountNode is an account with its resolved children, used for tree
// display and for validation sweeps.
type AccountNode struct {
	Account  Account       `json:"account"`
	Children []AccountNode `json:"children"`
}

// AccountTree returns the full forest of accounts for an owner as nested
// nodes. Accounts are ordered by sort order, then name, within each parent.
func AccountTree(db *gorm.DB, ownerID uuid.UUID, includeArchived bool) ([]AccountNode, error) {
	query := db.
		Where(&Account{OwnerID: ownerID}).
		Order("sort_order ASC").
		Order("name ASC")

	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var accounts []Account
	err := query.Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	// Parent-indexed adjacency, uuid.Nil collects the roots
	children := map[uuid.UUID][]Account{}
	for _, account := range accounts {
		parent := uuid.Nil
		if account.ParentID != nil {
			parent = *account.ParentID
		}
		children[parent] = append(children[parent], account)
	}

	var build func(parent uuid.UUID) []AccountNode
	build = func(parent uuid.UUID) []AccountNode {
		nodes := make([]AccountNode, 0, len(children[parent]))
		for _, account := range children[parent] {
			nodes = append(nodes, AccountNode{
				Account:  account,
				Children: build(account.ID),
			})
		}
		return nodes
	}

	return build(uuid.Nil), nil
}

// CreateDefaultAccounts seeds the root Income and Expenses accounts for a
// new owner. Existing accounts with the same name are not touched.
func CreateDefaultAccounts(db *gorm.DB, ownerID uuid.UUID) ([]Account, error) {
	defaults := []Account{
		{OwnerID: ownerID, Name: "Income", Category: CategoryIncome, Note: "All sources of income", SortOrder: 1},
		{OwnerID: ownerID, Name: "Expenses", Category: CategoryExpense, Note: "All spending categories", SortOrder: 2},
	}

	created := make([]Account, 0, len(defaults))
	for _, account := range defaults {
		var existing Account
		err := db.Where(&Account{OwnerID: ownerID, Name: account.Name}).First(&existing).Error
		if err == nil {
			continue
		}

		err = db.Create(&account).Error
		if err != nil {
			return nil, err
		}
		created = append(created, account)
	}

	return created, nil
}
