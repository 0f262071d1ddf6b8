package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Account errors
var (
	ErrInvalidHierarchy     = errors.New("the account hierarchy is invalid")
	ErrAccountNameNotUnique = errors.New("the account name must be unique among its siblings")
	ErrUnknownAccount       = errors.New("there is no account matching this ID")
)

// Ledger errors
var (
	ErrInvalidAmount = errors.New("the amount is invalid")
	ErrSameAccount   = errors.New("the source and destination account must be different")
)

// Period errors
var (
	ErrPeriodNotUnique = errors.New("you can not create multiple periods with the same start date for one owner")
	ErrPeriodGap       = errors.New("the period timeline can not be continued without a gap")
)

// Template errors
var (
	ErrTemplateValues     = errors.New("the template values do not match its allocation type")
	ErrTemplatePercentage = errors.New("the percentage must be larger than 0 and at most 100")
	ErrTemplateRange      = errors.New("the minimum amount must be positive and not larger than the maximum")
)

// Allocation errors
var ErrInvalidPool = errors.New("the allocation pool must be positive")

// Loan errors
var (
	ErrOverpayment   = errors.New("the repayment exceeds the outstanding balance")
	ErrLoanNotActive = errors.New("the loan is not active")
)
