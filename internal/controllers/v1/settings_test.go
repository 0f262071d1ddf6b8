package v1_test

import (
	"fmt"
	"net/http"
	"time"

	v1 "github.com/hearthledger/backend/internal/controllers/v1"
	"github.com/hearthledger/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestSettingsGetCreatesDefaults() {
	owner := uuid.New()

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/settings?owner=%s", owner), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), time.Monday, response.Data.WeekStartDay)
	assert.True(suite.T(), response.Data.DefaultInterestRate.Equal(decimalFromString(suite.T(), "0.02")))
}

func (suite *TestSuiteStandard) TestSettingsOwnerRequired() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/settings", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/settings", map[string]any{"weekStartDay": 0})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestSettingsUpdate() {
	owner := uuid.New()

	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/settings?owner=%s", owner), map[string]any{
		"weekStartDay": 0,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// The change is persisted
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/settings?owner=%s", owner), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), time.Sunday, response.Data.WeekStartDay)

	// The interest rate was not touched
	assert.True(suite.T(), response.Data.DefaultInterestRate.Equal(decimalFromString(suite.T(), "0.02")))
}

func (suite *TestSuiteStandard) TestSettingsUpdateFails() {
	owner := uuid.New()

	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/settings?owner=%s", owner), map[string]any{
		"defaultInterestRate": "-0.5",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
