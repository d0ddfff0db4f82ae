package analytics

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

const (
	defaultPeriodDays = 30
	maxPeriodDays     = 366
)

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
	now     func() time.Time
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Controller) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := c.periodParam(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.Dashboard(r.Context(), period)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.PrivateCache(w, 300, 300)
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

// periodParam resolves start_date/end_date, falling back to the last
// `period` days ending now.
func (c *Controller) periodParam(r *http.Request) (Period, error) {
	days := defaultPeriodDays
	if raw := r.URL.Query().Get("period"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPeriodDays {
			return Period{}, apperrors.NewValidationError("invalid period", apperrors.ValidationDetail{
				Field:   "period",
				Message: "period must be a number of days between 1 and " + strconv.Itoa(maxPeriodDays),
			})
		}
		days = n
	}

	from, to, err := httpx.DateRange(r)
	if err != nil {
		return Period{}, err
	}

	end := c.now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -days)
	if from != nil {
		start = *from
	}

	if !start.Before(end) {
		return Period{}, apperrors.NewValidationError("invalid date range", apperrors.ValidationDetail{
			Field:   "start_date",
			Message: "start_date must not be after end_date",
		})
	}
	return Period{Start: start, End: end}, nil
}
