package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationType decides how a template's share of the pool is computed.
//
// swagger:enum AllocationType
type AllocationType string

const (
	AllocationFixed      AllocationType = "fixed"
	AllocationPercentage AllocationType = "percentage"
	AllocationRange      AllocationType = "range"
)

// Valid reports whether the type is one of the defined variants.
func (t AllocationType) Valid() bool {
	switch t {
	case AllocationFixed, AllocationPercentage, AllocationRange:
		return true
	}

	return false
}

// BudgetTemplate describes how the allocation engine funds one destination
// account each period. Templates are consumed read-only by RunAllocation,
// in priority order (lower priority values run first).
type BudgetTemplate struct {
	DefaultModel
	OwnerID    uuid.UUID       `json:"ownerId" gorm:"index"`
	AccountID  uuid.UUID       `json:"accountId"` // Destination account
	Account    Account         `json:"-"`
	Type       AllocationType  `json:"type"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`     // Fixed amount per period, for type fixed
	Percentage decimal.Decimal `json:"percentage" gorm:"type:DECIMAL(8,4)"`  // Share of the pool in percent, for type percentage
	MinAmount  decimal.Decimal `json:"minAmount" gorm:"type:DECIMAL(20,8)"`  // Funding floor, for type range
	MaxAmount  decimal.Decimal `json:"maxAmount" gorm:"type:DECIMAL(20,8)"`  // Funding ceiling, for type range
	Priority   int             `json:"priority"`                             // Lower runs first
	Note       string          `json:"note"`
	Archived   bool            `json:"archived"`
}

// BeforeSave validates that the configured values match the allocation
// type. A single template's percentage must be within (0,100]; percentages
// across templates are deliberately not required to sum to 100, partial
// allocation is legal.
func (t *BudgetTemplate) BeforeSave(_ *gorm.DB) error {
	t.Note = strings.TrimSpace(t.Note)

	switch t.Type {
	case AllocationFixed:
		if !t.Amount.IsPositive() {
			return fmt.Errorf("%w: a fixed template needs a positive amount", ErrTemplateValues)
		}

	case AllocationPercentage:
		if !t.Percentage.IsPositive() || t.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrTemplatePercentage
		}

	case AllocationRange:
		if !t.MinAmount.IsPositive() || !t.MaxAmount.IsPositive() {
			return fmt.Errorf("%w: a range template needs positive minimum and maximum amounts", ErrTemplateValues)
		}
		if t.MinAmount.GreaterThan(t.MaxAmount) {
			return ErrTemplateRange
		}

	default:
		return fmt.Errorf("%w: %q is not a valid allocation type", ErrTemplateValues, t.Type)
	}

	return nil
}

// ActiveTemplates returns the owner's active templates in execution order:
// priority ascending, creation order as the deterministic tie-break.
func ActiveTemplates(db *gorm.DB, ownerID uuid.UUID) ([]BudgetTemplate, error) {
	var templates []BudgetTemplate

	err := db.Where(&BudgetTemplate{OwnerID: ownerID}).
		Where("archived = ?", false).
		Order("priority ASC").
		Order("strftime('%Y-%m-%d %H:%M:%f', created_at) ASC").
		Order("id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}

	return templates, nil
}
