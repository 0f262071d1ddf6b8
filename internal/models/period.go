package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OwnerSettings holds per-owner preferences for the ledger engine.
type OwnerSettings struct {
	DefaultModel
	OwnerID             uuid.UUID       `json:"ownerId" gorm:"uniqueIndex"`
	WeekStartDay        time.Weekday    `json:"weekStartDay"`                                  // 0 = Sunday, 1 = Monday, …
	DefaultInterestRate decimal.Decimal `json:"defaultInterestRate" gorm:"type:DECIMAL(8,4)"` // Per-week loan interest rate used when a loan does not specify one
}

// SettingsFor returns the settings for an owner, creating the defaults on
// first use: weeks start on Monday, loans default to 2% weekly interest.
func SettingsFor(db *gorm.DB, ownerID uuid.UUID) (OwnerSettings, error) {
	var settings OwnerSettings
	err := db.Where(&OwnerSettings{OwnerID: ownerID}).First(&settings).Error
	if err == nil {
		return settings, nil
	}

	settings = OwnerSettings{
		OwnerID:             ownerID,
		WeekStartDay:        time.Monday,
		DefaultInterestRate: decimal.NewFromFloat(0.02),
	}

	err = db.Create(&settings).Error
	if err != nil {
		return OwnerSettings{}, err
	}

	return settings, nil
}

// WeeklyPeriod is a 7-day accounting window for an owner.
//
// Periods for an owner partition time: they are contiguous and
// non-overlapping from the owner's first period onwards. Whether a period
// is "current" is always derived from the wall clock, never stored.
type WeeklyPeriod struct {
	DefaultModel
	OwnerID   uuid.UUID  `json:"ownerId" gorm:"uniqueIndex:period_owner_start"`
	StartDate types.Week `json:"startDate" gorm:"uniqueIndex:period_owner_start"`
}

// End returns the first instant after the period.
func (p WeeklyPeriod) End() time.Time {
	return p.StartDate.End()
}

// Contains reports whether the time instant falls into the period.
func (p WeeklyPeriod) Contains(t time.Time) bool {
	return p.StartDate.Contains(t)
}

// IsCurrent reports whether the period covers now. This is recomputed on
// every call, a stored flag would go stale the moment the week rolls over.
func (p WeeklyPeriod) IsCurrent(now time.Time) bool {
	return p.Contains(now)
}

// CurrentPeriod returns the period covering now for the owner.
//
// If no period covers now, the missing periods between the owner's latest
// period and now are fabricated so that the timeline stays gap-free, all
// within a single database transaction. The first period ever created for
// an owner starts at now normalized to the owner's week start day.
func CurrentPeriod(db *gorm.DB, ownerID uuid.UUID, now time.Time) (WeeklyPeriod, error) {
	var period WeeklyPeriod

	err := db.Transaction(func(tx *gorm.DB) error {
		settings, err := SettingsFor(tx, ownerID)
		if err != nil {
			return err
		}

		target := types.WeekOf(now, settings.WeekStartDay)

		err = tx.Where(&WeeklyPeriod{OwnerID: ownerID}).
			Where("date(start_date) = date(?)", target.Start()).
			First(&period).Error
		if err == nil {
			return nil
		}

		var latest WeeklyPeriod
		err = tx.Where(&WeeklyPeriod{OwnerID: ownerID}).
			Order("date(start_date) DESC").
			First(&latest).Error
		if err != nil {
			// First period for this owner, the epoch is the current week
			period = WeeklyPeriod{OwnerID: ownerID, StartDate: target}
			return tx.Create(&period).Error
		}

		if target.Before(latest.StartDate) {
			// now precedes the established timeline. The timeline only
			// grows forward, so this cannot be repaired here.
			return fmt.Errorf("%w: %s is before the first period", ErrPeriodGap, target)
		}

		// Fabricate every missing week up to and including the target so
		// allocation history can iterate periods without holes
		for week := latest.StartDate.Next(); !week.After(target); week = week.Next() {
			period = WeeklyPeriod{OwnerID: ownerID, StartDate: week}
			err = tx.Create(&period).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return WeeklyPeriod{}, err
	}

	return period, nil
}

// PeriodsInRange returns the owner's periods with a start date in
// [from, to], ordered by start date ascending.
func PeriodsInRange(db *gorm.DB, ownerID uuid.UUID, from, to types.Week) ([]WeeklyPeriod, error) {
	var periods []WeeklyPeriod

	err := db.Where(&WeeklyPeriod{OwnerID: ownerID}).
		Where("date(start_date) >= date(?)", from.Start()).
		Where("date(start_date) <= date(?)", to.Start()).
		Order("date(start_date) ASC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}

	return periods, nil
}
