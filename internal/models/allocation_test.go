package models_test

import (
	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

// allocationFixture wires up the accounts and period shared by the
// allocation engine tests.
type allocationFixture struct {
	owner       uuid.UUID
	source      models.Account
	destination models.Account
	period      models.WeeklyPeriod
}

func (suite *TestSuiteStandard) createAllocationFixture() allocationFixture {
	owner := uuid.New()

	return allocationFixture{
		owner:       owner,
		source:      suite.createTestAccount(models.Account{OwnerID: owner, Name: "Income", Category: models.CategoryIncome}),
		destination: suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"}),
		period:      suite.createTestPeriod(owner, testWeek),
	}
}

func (suite *TestSuiteStandard) TestRunAllocationInvalidPool() {
	f := suite.createAllocationFixture()

	for _, pool := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-100)} {
		_, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, pool, false)
		suite.Assert().ErrorIs(err, models.ErrInvalidPool, "pool %s was accepted", pool)
	}
}

func (suite *TestSuiteStandard) TestRunAllocationFixedPartial() {
	f := suite.createAllocationFixture()
	template := suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: f.destination.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(150),
	})

	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(100), false)
	suite.Require().Nil(err)

	suite.Require().Len(run.Results, 1)
	suite.Assert().Equal(models.OutcomePartiallyFunded, run.Results[0].Outcome)
	suite.Assert().Equal(template.ID, run.Results[0].TemplateID)
	suite.Assert().True(run.Results[0].Amount.Equal(decimal.NewFromInt(100)))
	suite.Assert().True(run.Remaining.IsZero())

	suite.Require().Len(run.Allocations, 1)
	suite.Assert().True(run.Allocations[0].PartiallyFunded)
	suite.Assert().True(suite.reloadAccount(f.destination).Balance.Equal(decimal.NewFromInt(100)))
}

func (suite *TestSuiteStandard) TestRunAllocationPercentageAgainstPool() {
	f := suite.createAllocationFixture()
	savings := suite.createTestAccount(models.Account{OwnerID: f.owner, Name: "Savings", Category: models.CategorySavings})

	// 30% of the pool runs first, the fixed template second. The
	// percentage is computed against the original pool of 200, not
	// against what the fixed template leaves over.
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:    f.owner,
		AccountID:  savings.ID,
		Type:       models.AllocationPercentage,
		Percentage: decimal.NewFromInt(30),
		Priority:   1,
	})
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: f.destination.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(50),
		Priority:  2,
	})

	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(200), false)
	suite.Require().Nil(err)

	suite.Require().Len(run.Results, 2)
	suite.Assert().Equal(models.OutcomeFunded, run.Results[0].Outcome)
	suite.Assert().True(run.Results[0].Amount.Equal(decimal.NewFromInt(60)), "percentage share is %s", run.Results[0].Amount)
	suite.Assert().Equal(models.OutcomeFunded, run.Results[1].Outcome)
	suite.Assert().True(run.Results[1].Amount.Equal(decimal.NewFromInt(50)))
	suite.Assert().True(run.Remaining.Equal(decimal.NewFromInt(90)), "remaining is %s", run.Remaining)

	suite.Assert().True(suite.reloadAccount(savings).Balance.Equal(decimal.NewFromInt(60)))
	suite.Assert().True(suite.reloadAccount(f.destination).Balance.Equal(decimal.NewFromInt(50)))
	suite.Assert().True(suite.reloadAccount(f.source).Balance.Equal(decimal.NewFromInt(-110)))
}

func (suite *TestSuiteStandard) TestRunAllocationRangeFloor() {
	f := suite.createAllocationFixture()
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: f.destination.ID,
		Type:      models.AllocationRange,
		MinAmount: decimal.NewFromInt(20),
		MaxAmount: decimal.NewFromInt(50),
	})

	// The pool cannot cover the floor, the template is skipped entirely
	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(10), false)
	suite.Require().Nil(err)

	suite.Require().Len(run.Results, 1)
	suite.Assert().Equal(models.OutcomeSkipped, run.Results[0].Outcome)
	suite.Assert().Empty(run.Allocations)
	suite.Assert().True(run.Remaining.Equal(decimal.NewFromInt(10)))
	suite.Assert().True(suite.reloadAccount(f.destination).Balance.IsZero())
}

func (suite *TestSuiteStandard) TestRunAllocationRangeCeiling() {
	f := suite.createAllocationFixture()
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: f.destination.ID,
		Type:      models.AllocationRange,
		MinAmount: decimal.NewFromInt(20),
		MaxAmount: decimal.NewFromInt(50),
	})

	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(30), false)
	suite.Require().Nil(err)

	// Between floor and ceiling, the range takes everything that is left
	suite.Require().Len(run.Results, 1)
	suite.Assert().Equal(models.OutcomeFunded, run.Results[0].Outcome)
	suite.Assert().True(run.Results[0].Amount.Equal(decimal.NewFromInt(30)))

	run, err = models.RunAllocation(models.DB, f.owner, suite.createTestPeriod(f.owner, testWeek.Next()).ID, f.source.ID, decimal.NewFromInt(80), false)
	suite.Require().Nil(err)
	suite.Assert().True(run.Results[0].Amount.Equal(decimal.NewFromInt(50)))
	suite.Assert().True(run.Remaining.Equal(decimal.NewFromInt(30)))
}

func (suite *TestSuiteStandard) TestRunAllocationIdempotent() {
	f := suite.createAllocationFixture()
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: f.destination.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(50),
	})

	_, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(100), false)
	suite.Require().Nil(err)

	// A second run must not move money again
	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(100), false)
	suite.Require().Nil(err)
	suite.Require().Len(run.Results, 1)
	suite.Assert().Equal(models.OutcomeAlreadyProcessed, run.Results[0].Outcome)
	suite.Assert().True(suite.reloadAccount(f.destination).Balance.Equal(decimal.NewFromInt(50)))

	// With reprocess set, it allocates again
	run, err = models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(100), true)
	suite.Require().Nil(err)
	suite.Assert().Equal(models.OutcomeFunded, run.Results[0].Outcome)
	suite.Assert().True(suite.reloadAccount(f.destination).Balance.Equal(decimal.NewFromInt(100)))
}

func (suite *TestSuiteStandard) TestRunAllocationFailureIsolated() {
	f := suite.createAllocationFixture()
	savings := suite.createTestAccount(models.Account{OwnerID: f.owner, Name: "Savings", Category: models.CategorySavings})

	// The first template points at an account that is deleted before the run
	doomed := suite.createTestAccount(models.Account{OwnerID: f.owner, Name: "Doomed"})
	broken := suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: doomed.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(30),
		Priority:  1,
	})
	suite.Require().Nil(models.DB.Delete(&doomed).Error)
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: savings.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(40),
		Priority:  2,
	})

	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(100), false)
	suite.Require().Nil(err)

	suite.Require().Len(run.Results, 2)
	suite.Assert().Equal(models.OutcomeFailed, run.Results[0].Outcome)
	suite.Assert().Equal(broken.ID, run.Results[0].TemplateID)
	suite.Assert().NotEmpty(run.Results[0].Error)

	// The failure does not consume pool and does not stop the second template
	suite.Assert().Equal(models.OutcomeFunded, run.Results[1].Outcome)
	suite.Assert().True(run.Remaining.Equal(decimal.NewFromInt(60)))
	suite.Assert().True(suite.reloadAccount(savings).Balance.Equal(decimal.NewFromInt(40)))

	// The failed template must not leave a half-transfer behind: the source
	// carries only the funded template's debit, no dangling leg.
	suite.Assert().True(suite.reloadAccount(f.source).Balance.Equal(decimal.NewFromInt(-40)))

	transactions := f.source.Transactions(models.DB)
	suite.Require().Len(transactions, 1)
	suite.Assert().True(transactions[0].Amount.Equal(decimal.NewFromInt(-40)))
}

func (suite *TestSuiteStandard) TestRunAllocationExhaustedPool() {
	f := suite.createAllocationFixture()
	savings := suite.createTestAccount(models.Account{OwnerID: f.owner, Name: "Savings", Category: models.CategorySavings})

	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: f.destination.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(100),
		Priority:  1,
	})
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   f.owner,
		AccountID: savings.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(10),
		Priority:  2,
	})

	run, err := models.RunAllocation(models.DB, f.owner, f.period.ID, f.source.ID, decimal.NewFromInt(100), false)
	suite.Require().Nil(err)

	suite.Require().Len(run.Results, 2)
	suite.Assert().Equal(models.OutcomeFunded, run.Results[0].Outcome)
	suite.Assert().Equal(models.OutcomeSkipped, run.Results[1].Outcome)
	suite.Assert().True(suite.reloadAccount(savings).Balance.IsZero())
}

func (suite *TestSuiteStandard) TestRunAllocationCrossOwner() {
	f := suite.createAllocationFixture()

	_, err := models.RunAllocation(models.DB, uuid.New(), f.period.ID, f.source.ID, decimal.NewFromInt(100), false)
	suite.Assert().ErrorIs(err, models.ErrUnknownAccount)
}

func (suite *TestSuiteStandard) TestManualAllocate() {
	f := suite.createAllocationFixture()

	allocation, err := models.Allocate(models.DB, models.Allocation{
		OwnerID:              f.owner,
		SourceAccountID:      f.source.ID,
		DestinationAccountID: f.destination.ID,
		PeriodID:             f.period.ID,
		Amount:               decimal.NewFromInt(25),
		Note:                 "Topping up groceries",
	})
	suite.Require().Nil(err)

	suite.Assert().Nil(allocation.TemplateID)
	suite.Assert().True(allocation.Processed)
	suite.Assert().True(suite.reloadAccount(f.destination).Balance.Equal(decimal.NewFromInt(25)))
}

func (suite *TestSuiteStandard) TestManualAllocateSameAccount() {
	f := suite.createAllocationFixture()

	_, err := models.Allocate(models.DB, models.Allocation{
		OwnerID:              f.owner,
		SourceAccountID:      f.source.ID,
		DestinationAccountID: f.source.ID,
		PeriodID:             f.period.ID,
		Amount:               decimal.NewFromInt(25),
	})
	suite.Assert().ErrorIs(err, models.ErrSameAccount)
}

func (suite *TestSuiteStandard) TestAvailablePool() {
	f := suite.createAllocationFixture()

	suite.mustPost(f.source, f.period, decimal.NewFromInt(500), models.KindIncome, "Salary")
	suite.mustPost(f.source, f.period, decimal.NewFromInt(-80), models.KindExpense, "Rent share")

	pool, err := models.AvailablePool(models.DB, f.owner, f.period.ID)
	suite.Require().Nil(err)
	suite.Assert().True(pool.Equal(decimal.NewFromInt(420)), "pool is %s", pool)

	_, err = models.Allocate(models.DB, models.Allocation{
		OwnerID:              f.owner,
		SourceAccountID:      f.source.ID,
		DestinationAccountID: f.destination.ID,
		PeriodID:             f.period.ID,
		Amount:               decimal.NewFromInt(100),
	})
	suite.Require().Nil(err)

	pool, err = models.AvailablePool(models.DB, f.owner, f.period.ID)
	suite.Require().Nil(err)
	suite.Assert().True(pool.Equal(decimal.NewFromInt(320)), "pool is %s", pool)
}
