package http

import (
	"net/http"

	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/shopspring/decimal"
)

// appendRecordRequest takes the data date as a calendar date or RFC 3339
type appendRecordRequest struct {
	DataDate   string           `json:"data_date"`
	PeriodType types.PeriodType `json:"period_type"`
	PV         decimal.Decimal  `json:"pv"`
	EV         decimal.Decimal  `json:"ev"`
	AC         decimal.Decimal  `json:"ac"`
	BAC        *decimal.Decimal `json:"bac,omitempty"`
}

func (s *Server) appendRecord(w http.ResponseWriter, r *http.Request) {
	var req appendRecordRequest
	if err := decodeJSON(r, w, &req); err != nil {
		handleError(w, r, err)
		return
	}
	dataDate, err := parseDate("data_date", req.DataDate)
	if err != nil {
		handleError(w, r, err)
		return
	}

	record, err := s.uc.EVM.AppendRecord(r.Context(), accountID(r), usecase.AppendRecordInput{
		DataDate:   dataDate,
		PeriodType: req.PeriodType,
		PV:         req.PV,
		EV:         req.EV,
		AC:         req.AC,
		BAC:        req.BAC,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, record)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.EVM.ListRecords(r.Context(), accountID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	at, err := queryDate(r, "date")
	if err != nil {
		handleError(w, r, err)
		return
	}
	metrics, err := s.uc.EVM.Metrics(r.Context(), accountID(r), at)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, metrics)
}

func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		handleError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		handleError(w, r, err)
		return
	}

	points, err := s.uc.EVM.Trend(r.Context(), accountID(r), from, to)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, points)
}

func (s *Server) projectEVM(w http.ResponseWriter, r *http.Request) {
	at, err := queryDate(r, "date")
	if err != nil {
		handleError(w, r, err)
		return
	}
	rollup, err := s.uc.EVM.ProjectEVM(r.Context(), projectID(r), at)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rollup)
}
