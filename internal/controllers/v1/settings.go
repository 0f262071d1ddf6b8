package v1

import (
	"net/http"
	"time"

	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RegisterSettingsRoutes registers the routes for owner settings with
// the RouterGroup that is passed.
//
// Settings are keyed by owner, not by their own ID: GET creates the
// defaults on first use, PATCH updates them in place.
func RegisterSettingsRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsSettings)
	r.GET("", GetSettings)
	r.PATCH("", UpdateSettings)
}

// SettingsEditable represents the user configurable owner settings.
type SettingsEditable struct {
	WeekStartDay        time.Weekday    `json:"weekStartDay" example:"1" default:"1"`             // 0 = Sunday, 1 = Monday, …
	DefaultInterestRate decimal.Decimal `json:"defaultInterestRate" example:"0.02" default:"0.02"` // Per-week loan interest rate used when a loan does not specify one
}

type SettingsResponse struct {
	Data  *models.OwnerSettings `json:"data"`                                                          // The owner's settings
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type SettingsQueryFilter struct {
	OwnerID hl_uuid.UUID `form:"owner"` // Owner the settings belong to
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settings
// @Success		204
// @Router			/v1/settings [options]
func OptionsSettings(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET, PATCH")
	c.Render(http.StatusNoContent, nil)
}

// @Summary		Get settings
// @Description	Returns the owner's settings, creating the defaults on first use
// @Tags			Settings
// @Produce		json
// @Success		200	{object}	SettingsResponse
// @Failure		400	{object}	SettingsResponse
// @Failure		500	{object}	SettingsResponse
// @Router			/v1/settings [get]
// @Param			owner	query	string	true	"Owner ID"
func GetSettings(c *gin.Context) {
	var filter SettingsQueryFilter
	_ = c.Bind(&filter)

	if filter.OwnerID == hl_uuid.Nil {
		s := errOwnerIDParameter.Error()
		c.JSON(http.StatusBadRequest, SettingsResponse{
			Error: &s,
		})
		return
	}

	settings, err := models.SettingsFor(models.DB, filter.OwnerID.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettingsResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{Data: &settings})
}

// @Summary		Update settings
// @Description	Update the owner's settings. Only values to be updated need to be specified. Changing the week start day affects future periods only.
// @Tags			Settings
// @Accept			json
// @Produce		json
// @Success		200			{object}	SettingsResponse
// @Failure		400			{object}	SettingsResponse
// @Failure		500			{object}	SettingsResponse
// @Param			owner		query		string				true	"Owner ID"
// @Param			settings	body		SettingsEditable	true	"Settings"
// @Router			/v1/settings [patch]
func UpdateSettings(c *gin.Context) {
	var filter SettingsQueryFilter
	_ = c.Bind(&filter)

	if filter.OwnerID == hl_uuid.Nil {
		s := errOwnerIDParameter.Error()
		c.JSON(http.StatusBadRequest, SettingsResponse{
			Error: &s,
		})
		return
	}

	settings, err := models.SettingsFor(models.DB, filter.OwnerID.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettingsResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, SettingsEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettingsResponse{
			Error: &s,
		})
		return
	}

	var data SettingsEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettingsResponse{
			Error: &s,
		})
		return
	}

	if data.DefaultInterestRate.IsNegative() {
		s := "the interest rate must not be negative"
		c.JSON(http.StatusBadRequest, SettingsResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&settings).Select("", updateFields...).Updates(models.OwnerSettings{
		WeekStartDay:        data.WeekStartDay,
		DefaultInterestRate: data.DefaultInterestRate,
	}).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SettingsResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{Data: &settings})
}
