package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// EVMRecord is one reporting period of a control account. Records are append
// only; the cumulative fields hold the running sums up to and including
// DataDate and are filled by the repository on append.
type EVMRecord struct {
	ID               types.RecordID         `json:"id"`
	ControlAccountID types.ControlAccountID `json:"control_account_id"`
	DataDate         time.Time              `json:"data_date"`
	PeriodType       types.PeriodType       `json:"period_type"`
	PV               decimal.Decimal        `json:"pv"`
	EV               decimal.Decimal        `json:"ev"`
	AC               decimal.Decimal        `json:"ac"`
	BAC              decimal.Decimal        `json:"bac"`
	CumulativePV     decimal.Decimal        `json:"cumulative_pv"`
	CumulativeEV     decimal.Decimal        `json:"cumulative_ev"`
	CumulativeAC     decimal.Decimal        `json:"cumulative_ac"`
	CreatedAt        time.Time              `json:"created_at"`
}

// NewRecordID generates a new EVM record ID
func NewRecordID() types.RecordID {
	return types.RecordID(uuid.New().String())
}

// EACMethod names the formula used for the estimate at completion
type EACMethod string

const (
	// EACByCPI is BAC / CPI
	EACByCPI EACMethod = "BAC_OVER_CPI"
	// EACByRemainingBudget is AC + (BAC - EV), used when CPI is undefined or zero
	EACByRemainingBudget EACMethod = "AC_PLUS_REMAINING"
)

// Metrics holds the derived earned value figures. Index fields are nil when
// their denominator is zero.
type Metrics struct {
	PV  decimal.Decimal `json:"pv"`
	EV  decimal.Decimal `json:"ev"`
	AC  decimal.Decimal `json:"ac"`
	BAC decimal.Decimal `json:"bac"`

	CV  decimal.Decimal `json:"cv"`
	SV  decimal.Decimal `json:"sv"`
	CPI *float64        `json:"cpi"`
	SPI *float64        `json:"spi"`

	EAC       decimal.Decimal `json:"eac"`
	EACMethod EACMethod       `json:"eac_method"`
	ETC       decimal.Decimal `json:"etc"`
	VAC       decimal.Decimal `json:"vac"`
	TCPI      *float64        `json:"tcpi"`

	PercentComplete    *float64 `json:"percent_complete"`
	PercentCompleteRaw *float64 `json:"percent_complete_raw"`
}

// CumulativeMetrics is Metrics computed from the sums of every period up to DataDate
type CumulativeMetrics struct {
	ControlAccountID types.ControlAccountID `json:"control_account_id,omitempty"`
	DataDate         time.Time              `json:"data_date"`
	Periods          int                    `json:"periods"`
	Metrics
}

// TrendPoint is one period of an S-curve. Period indices use the period's own
// values; cumulative indices use the running sums.
type TrendPoint struct {
	DataDate      time.Time        `json:"data_date"`
	PeriodType    types.PeriodType `json:"period_type"`
	PV            decimal.Decimal  `json:"pv"`
	EV            decimal.Decimal  `json:"ev"`
	AC            decimal.Decimal  `json:"ac"`
	CPI           *float64         `json:"cpi"`
	SPI           *float64         `json:"spi"`
	CumulativePV  decimal.Decimal  `json:"cumulative_pv"`
	CumulativeEV  decimal.Decimal  `json:"cumulative_ev"`
	CumulativeAC  decimal.Decimal  `json:"cumulative_ac"`
	CumulativeCPI *float64         `json:"cumulative_cpi"`
	CumulativeSPI *float64         `json:"cumulative_spi"`
}

// PerformanceStatus classifies cost and schedule indices against thresholds
type PerformanceStatus string

const (
	PerformanceOnTrack  PerformanceStatus = "ON_TRACK"
	PerformanceWatch    PerformanceStatus = "WATCH"
	PerformanceCritical PerformanceStatus = "CRITICAL"
)

// AccountMetrics pairs a control account with its cumulative metrics
type AccountMetrics struct {
	ControlAccount *ControlAccount    `json:"control_account"`
	Cumulative     *CumulativeMetrics `json:"cumulative"`
	Status         PerformanceStatus  `json:"status"`
}

// ProjectEVM is a project roll-up: totals are ratio of sums across accounts
type ProjectEVM struct {
	ProjectID types.ProjectID   `json:"project_id"`
	DataDate  time.Time         `json:"data_date"`
	Total     *Metrics          `json:"total"`
	Status    PerformanceStatus `json:"status"`
	Accounts  []*AccountMetrics `json:"accounts"`
}
