package models

// PropQuery is the HTTP query-string form of a prop request.
type PropQuery struct {
	Line       *float64 `validate:"required,gte=0"`
	From       string   `validate:"omitempty,datetime=2006-01-02"`
	To         string   `validate:"omitempty,datetime=2006-01-02"`
	Location   string   `validate:"omitempty,oneof=home away"`
	MinMinutes float64  `validate:"gte=0,lte=60"`
	Opponent   int64    `validate:"gte=0"`
	LastN      int      `validate:"gte=0,lte=100"`
	Exclude    []int64  `validate:"dive,gt=0"`
}

// SeasonQuery selects a season for metrics endpoints.
type SeasonQuery struct {
	Season int `validate:"omitempty,gte=1946,lte=2100"`
}

// ExpectedValueQuery is the input of the EV calculator.
type ExpectedValueQuery struct {
	HitRate *float64 `validate:"required,gte=0,lte=100"`
	Odds    float64  `validate:"required"`
	Wager   float64  `validate:"gt=0"`
}

// RefreshSplitsRequest optionally overrides the default rolling windows.
type RefreshSplitsRequest struct {
	Windows []int `json:"windows" validate:"omitempty,max=10,dive,gt=0,lte=82"`
}
