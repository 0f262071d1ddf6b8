package models_test

import (
	"github.com/google/uuid"
	"github.com/hearthledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTemplateFixedNeedsAmount() {
	account := suite.createTestAccount(models.Account{Name: "Groceries"})

	err := models.DB.Create(&models.BudgetTemplate{
		OwnerID:   account.OwnerID,
		AccountID: account.ID,
		Type:      models.AllocationFixed,
	}).Error

	suite.Assert().ErrorIs(err, models.ErrTemplateValues)
}

func (suite *TestSuiteStandard) TestTemplatePercentageBounds() {
	account := suite.createTestAccount(models.Account{Name: "Groceries"})

	for _, percentage := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(-10),
		decimal.NewFromInt(101),
	} {
		err := models.DB.Create(&models.BudgetTemplate{
			OwnerID:    account.OwnerID,
			AccountID:  account.ID,
			Type:       models.AllocationPercentage,
			Percentage: percentage,
		}).Error

		suite.Assert().ErrorIs(err, models.ErrTemplatePercentage, "percentage %s was accepted", percentage)
	}

	// 100% of the pool is a legal configuration
	err := models.DB.Create(&models.BudgetTemplate{
		OwnerID:    account.OwnerID,
		AccountID:  account.ID,
		Type:       models.AllocationPercentage,
		Percentage: decimal.NewFromInt(100),
	}).Error
	suite.Assert().Nil(err)
}

func (suite *TestSuiteStandard) TestTemplateRangeBounds() {
	account := suite.createTestAccount(models.Account{Name: "Groceries"})

	err := models.DB.Create(&models.BudgetTemplate{
		OwnerID:   account.OwnerID,
		AccountID: account.ID,
		Type:      models.AllocationRange,
		MinAmount: decimal.NewFromInt(50),
		MaxAmount: decimal.NewFromInt(20),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrTemplateRange)

	err = models.DB.Create(&models.BudgetTemplate{
		OwnerID:   account.OwnerID,
		AccountID: account.ID,
		Type:      models.AllocationRange,
		MaxAmount: decimal.NewFromInt(20),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrTemplateValues)
}

func (suite *TestSuiteStandard) TestTemplateUnknownType() {
	account := suite.createTestAccount(models.Account{Name: "Groceries"})

	err := models.DB.Create(&models.BudgetTemplate{
		OwnerID:   account.OwnerID,
		AccountID: account.ID,
		Type:      "vibes",
	}).Error

	suite.Assert().ErrorIs(err, models.ErrTemplateValues)
}

func (suite *TestSuiteStandard) TestActiveTemplatesOrder() {
	owner := uuid.New()
	account := suite.createTestAccount(models.Account{OwnerID: owner, Name: "Groceries"})

	second := suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   owner,
		AccountID: account.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(10),
		Priority:  2,
	})
	first := suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   owner,
		AccountID: account.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(10),
		Priority:  1,
	})
	_ = suite.createTestTemplate(models.BudgetTemplate{
		OwnerID:   owner,
		AccountID: account.ID,
		Type:      models.AllocationFixed,
		Amount:    decimal.NewFromInt(10),
		Priority:  3,
		Archived:  true,
	})

	templates, err := models.ActiveTemplates(models.DB, owner)
	suite.Require().Nil(err)
	suite.Require().Len(templates, 2)
	suite.Assert().Equal(first.ID, templates[0].ID)
	suite.Assert().Equal(second.ID, templates[1].ID)
}
