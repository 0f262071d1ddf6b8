package models_test

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestPostUpdatesBalance() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	transaction := suite.mustPost(account, period, decimal.NewFromInt(100), models.KindIncome, "Budget")
	suite.Assert().Equal(account.ID, transaction.AccountID)
	suite.Assert().Equal(owner, transaction.OwnerID)

	account = suite.reloadAccount(account)
	suite.Assert().True(account.Balance.Equal(decimal.NewFromInt(100)), "balance is %s", account.Balance)
}

// The balance addition happens in the database, so parallel posts to the
// same account must not lose an update to a stale read.
func (suite *TestSuiteStandard) TestPostConcurrentSameAccount() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Wallet"})
	period := suite.createTestPeriod(owner, testWeek)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := models.Post(models.DB, account.ID, period.ID, decimal.NewFromInt(1), models.KindIncome, "Pocket money")
			suite.Assert().Nil(err)
		}()
	}
	wg.Wait()

	suite.Assert().True(suite.reloadAccount(account).Balance.Equal(decimal.NewFromInt(10)))
}

func (suite *TestSuiteStandard) TestPostZeroAmount() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	_, err := models.Post(models.DB, account.ID, period.ID, decimal.Zero, models.KindExpense, "Nothing")
	suite.Assert().ErrorIs(err, models.ErrInvalidAmount)
}

func (suite *TestSuiteStandard) TestPostUnknownAccount() {
	owner := uuid.New()
	period := suite.createTestPeriod(owner, testWeek)

	_, err := models.Post(models.DB, uuid.New(), period.ID, decimal.NewFromInt(10), models.KindExpense, "Void")
	suite.Assert().ErrorIs(err, models.ErrUnknownAccount)
}

func (suite *TestSuiteStandard) TestPostCrossOwnerPeriod() {
	account := suite.createTestAccount(models.Account{Name: "Groceries"})
	period := suite.createTestPeriod(uuid.New(), testWeek)

	_, err := models.Post(models.DB, account.ID, period.ID, decimal.NewFromInt(10), models.KindExpense, "Void")
	suite.Assert().ErrorIs(err, models.ErrUnknownAccount)
}

func (suite *TestSuiteStandard) TestPostInvalidKind() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	_, err := models.Post(models.DB, account.ID, period.ID, decimal.NewFromInt(10), "wire_fraud", "Nope")
	suite.Assert().ErrorIs(err, models.ErrInvalidAmount)
}

func (suite *TestSuiteStandard) TestPostTransfer() {
	owner := uuid.New()
	source := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Checking", Category: models.CategorySavings})
	destination := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	outgoing, incoming, err := models.PostTransfer(models.DB, source.ID, destination.ID, period.ID, decimal.NewFromInt(40), models.KindTransfer, "Weekly budget")
	suite.Require().Nil(err)

	suite.Assert().True(outgoing.Amount.Equal(decimal.NewFromInt(-40)))
	suite.Assert().True(incoming.Amount.Equal(decimal.NewFromInt(40)))

	// Both legs carry the same transfer ID
	suite.Require().NotNil(outgoing.TransferID)
	suite.Require().NotNil(incoming.TransferID)
	suite.Assert().Equal(*outgoing.TransferID, *incoming.TransferID)

	suite.Assert().True(suite.reloadAccount(source).Balance.Equal(decimal.NewFromInt(-40)))
	suite.Assert().True(suite.reloadAccount(destination).Balance.Equal(decimal.NewFromInt(40)))
}

func (suite *TestSuiteStandard) TestPostTransferSameAccount() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	_, _, err := models.PostTransfer(models.DB, account.ID, account.ID, period.ID, decimal.NewFromInt(40), models.KindTransfer, "Circular")
	suite.Assert().ErrorIs(err, models.ErrSameAccount)
}

func (suite *TestSuiteStandard) TestPostTransferNegativeAmount() {
	owner := uuid.New()
	source := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Checking"})
	destination := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	_, _, err := models.PostTransfer(models.DB, source.ID, destination.ID, period.ID, decimal.NewFromInt(-40), models.KindTransfer, "Backwards")
	suite.Assert().ErrorIs(err, models.ErrInvalidAmount)
}

func (suite *TestSuiteStandard) TestPostTransferAtomic() {
	owner := uuid.New()
	source := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Checking"})
	period := suite.createTestPeriod(owner, testWeek)

	// The credit leg fails on the unknown destination, so the debit leg
	// must be rolled back too
	_, _, err := models.PostTransfer(models.DB, source.ID, uuid.New(), period.ID, decimal.NewFromInt(40), models.KindTransfer, "Into the void")
	suite.Require().ErrorIs(err, models.ErrUnknownAccount)

	suite.Assert().True(suite.reloadAccount(source).Balance.IsZero())
	suite.Assert().Empty(source.Transactions(models.DB))
}

func (suite *TestSuiteStandard) TestTransactionsInRange() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	first := suite.createTestPeriod(owner, testWeek)
	second := suite.createTestPeriod(owner, testWeek.Next())
	third := suite.createTestPeriod(owner, testWeek.Add(2))

	suite.mustPost(account, first, decimal.NewFromInt(10), models.KindIncome, "First")
	suite.mustPost(account, second, decimal.NewFromInt(20), models.KindIncome, "Second")
	suite.mustPost(account, third, decimal.NewFromInt(30), models.KindIncome, "Third")

	transactions, err := models.TransactionsInRange(models.DB, account.ID, testWeek, testWeek.Next())
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 2)

	// Newest first
	suite.Assert().Equal("Second", transactions[0].Description)
	suite.Assert().Equal("First", transactions[1].Description)
}

func (suite *TestSuiteStandard) TestAccountTransactionsOrder() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})
	period := suite.createTestPeriod(owner, testWeek)

	older := models.Transaction{
		OwnerID:     owner,
		AccountID:   account.ID,
		PeriodID:    period.ID,
		Amount:      decimal.NewFromInt(10),
		Kind:        models.KindIncome,
		Description: "Older",
		Date:        testTime(),
	}
	suite.Require().Nil(models.DB.Create(&older).Error)

	newer := models.Transaction{
		OwnerID:     owner,
		AccountID:   account.ID,
		PeriodID:    period.ID,
		Amount:      decimal.NewFromInt(-5),
		Kind:        models.KindExpense,
		Description: "Newer",
		Date:        testTime().AddDate(0, 0, 1),
	}
	suite.Require().Nil(models.DB.Create(&newer).Error)

	transactions := account.Transactions(models.DB)
	suite.Require().Len(transactions, 2)
	suite.Assert().Equal("Newer", transactions[0].Description)
}
