package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func (s *Server) createRisk(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateRiskInput
	if err := decodeJSON(r, w, &in); err != nil {
		handleError(w, r, err)
		return
	}
	risk, err := s.uc.Risk.CreateRisk(r.Context(), projectID(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, risk)
}

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	risks, err := s.uc.Risk.ListRisks(r.Context(), projectID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, risks)
}

type riskResponse struct {
	*model.Risk
	Responses []*model.RiskResponse `json:"responses"`
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	id, err := riskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	risk, err := s.uc.Risk.GetRisk(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	responses, err := s.uc.Risk.ListResponses(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, riskResponse{Risk: risk, Responses: responses})
}

func (s *Server) assessRisk(w http.ResponseWriter, r *http.Request) {
	id, err := riskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var assessment model.Assessment
	if err := decodeJSON(r, w, &assessment); err != nil {
		handleError(w, r, err)
		return
	}
	risk, err := s.uc.Risk.AssessRisk(r.Context(), id, assessment)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, risk)
}

func (s *Server) addResponse(w http.ResponseWriter, r *http.Request) {
	id, err := riskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var in usecase.AddResponseInput
	if err := decodeJSON(r, w, &in); err != nil {
		handleError(w, r, err)
		return
	}
	resp, err := s.uc.Risk.AddResponse(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

func (s *Server) implementResponse(w http.ResponseWriter, r *http.Request) {
	id, err := riskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	responseID := types.ResponseID(chi.URLParam(r, "responseID"))

	resp, risk, err := s.uc.Risk.ImplementResponse(r.Context(), id, responseID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"response": resp,
		"risk":     risk,
	})
}

type transitionRequest struct {
	Status types.RiskStatus `json:"status"`
	Reason string           `json:"reason"`
}

func (s *Server) transitionRisk(w http.ResponseWriter, r *http.Request) {
	id, err := riskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, w, &req); err != nil {
		handleError(w, r, err)
		return
	}
	risk, err := s.uc.Risk.TransitionRisk(r.Context(), id, req.Status, req.Reason)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, risk)
}

func (s *Server) riskMatrix(w http.ResponseWriter, r *http.Request) {
	var residual bool
	if raw := r.URL.Query().Get("residual"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			handleError(w, r, goerr.Wrap(types.ErrInvalidArgument, "residual must be a boolean",
				goerr.V(types.FieldKey, "residual"), goerr.V(types.ValueKey, raw)))
			return
		}
		residual = v
	}

	matrix, err := s.uc.Risk.Matrix(r.Context(), projectID(r), residual)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, matrix)
}

func (s *Server) exposure(w http.ResponseWriter, r *http.Request) {
	result, err := s.uc.Risk.Exposure(r.Context(), projectID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var in usecase.SimulateInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, w, &in); err != nil {
			handleError(w, r, err)
			return
		}
	}
	result, err := s.uc.Risk.Simulate(r.Context(), projectID(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
