package models

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueKind classifies a structural problem found by the integrity sweep.
//
// swagger:enum IssueKind
type IssueKind string

const (
	IssueUnknownParent    IssueKind = "unknown_parent"
	IssueCrossOwnerParent IssueKind = "cross_owner_parent"
	IssueCategoryMismatch IssueKind = "category_mismatch"
	IssueCycle            IssueKind = "cycle"
	IssueStaleBalance     IssueKind = "stale_balance"
)

// Issue identifies one account with a structural problem, with enough
// detail to fix or remove it.
type Issue struct {
	AccountID   uuid.UUID `json:"accountId"`
	AccountName string    `json:"accountName"`
	Kind        IssueKind `json:"kind"`
	Detail      string    `json:"detail"`
}

// ValidateIntegrity sweeps an owner's account forest and reports
// structural issues: parents that do not exist or belong to another
// owner, categories that do not match the root ancestor, cycles in the
// parent chain, and cached balances diverging from the ledger fold.
//
// With fix set, stale cached balances are recomputed from the ledger.
// Structural issues are never auto-corrected, only reported.
func ValidateIntegrity(db *gorm.DB, ownerID uuid.UUID, fix bool) ([]Issue, error) {
	// Soft-deleted accounts are not part of the forest: a live child
	// referencing a deleted parent is a dangling reference.
	var accounts []Account
	err := db.Where(&Account{OwnerID: ownerID}).Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]Account, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}

	issues := []Issue{}
	for _, account := range accounts {
		issues = append(issues, checkStructure(account, byID)...)

		recomputed, err := account.RecomputedBalance(db, nil)
		if err != nil {
			return nil, err
		}

		if !recomputed.Equal(account.Balance) {
			issues = append(issues, Issue{
				AccountID:   account.ID,
				AccountName: account.Name,
				Kind:        IssueStaleBalance,
				Detail:      fmt.Sprintf("cached balance is %s, ledger fold is %s", account.Balance, recomputed),
			})

			if fix {
				// UpdateColumn: the zero-value model must not run the
				// account validation hooks.
				err = db.Model(&Account{}).Where("id = ?", account.ID).UpdateColumn("balance", recomputed).Error
				if err != nil {
					return nil, err
				}
			}
		}
	}

	return issues, nil
}

// checkStructure walks the parent chain of a single account.
func checkStructure(account Account, byID map[uuid.UUID]Account) []Issue {
	if account.ParentID == nil {
		return nil
	}

	issues := []Issue{}

	parent, ok := byID[*account.ParentID]
	if !ok {
		return append(issues, Issue{
			AccountID:   account.ID,
			AccountName: account.Name,
			Kind:        IssueUnknownParent,
			Detail:      fmt.Sprintf("parent %s does not exist for this owner", *account.ParentID),
		})
	}

	if parent.OwnerID != account.OwnerID {
		issues = append(issues, Issue{
			AccountID:   account.ID,
			AccountName: account.Name,
			Kind:        IssueCrossOwnerParent,
			Detail:      fmt.Sprintf("parent %s belongs to owner %s", parent.ID, parent.OwnerID),
		})
	}

	// Walk to the root, detecting cycles on the way
	seen := map[uuid.UUID]bool{account.ID: true}
	root := parent
	for {
		if seen[root.ID] {
			return append(issues, Issue{
				AccountID:   account.ID,
				AccountName: account.Name,
				Kind:        IssueCycle,
				Detail:      fmt.Sprintf("parent chain loops at %s", root.ID),
			})
		}
		seen[root.ID] = true

		if root.ParentID == nil {
			break
		}

		next, ok := byID[*root.ParentID]
		if !ok {
			// Reported as unknown_parent on the account that holds the
			// dangling reference
			return issues
		}
		root = next
	}

	if account.Category != root.Category {
		issues = append(issues, Issue{
			AccountID:   account.ID,
			AccountName: account.Name,
			Kind:        IssueCategoryMismatch,
			Detail:      fmt.Sprintf("category is %q, root ancestor %s is %q", account.Category, root.ID, root.Category),
		})
	}

	return issues
}
