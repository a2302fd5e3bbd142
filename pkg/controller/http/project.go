package http

import (
	"net/http"

	"github.com/secmon-lab/argus/pkg/usecase"
)

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateProjectInput
	if err := decodeJSON(r, w, &in); err != nil {
		handleError(w, r, err)
		return
	}
	project, err := s.uc.Project.CreateProject(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, project)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.uc.Project.ListProjects(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.uc.Project.GetProject(r.Context(), projectID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, project)
}

func (s *Server) createControlAccount(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateControlAccountInput
	if err := decodeJSON(r, w, &in); err != nil {
		handleError(w, r, err)
		return
	}
	account, err := s.uc.ControlAccount.CreateControlAccount(r.Context(), projectID(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, account)
}

func (s *Server) listControlAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.uc.ControlAccount.ListControlAccounts(r.Context(), projectID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, accounts)
}

func (s *Server) getControlAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.uc.ControlAccount.GetControlAccount(r.Context(), accountID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, account)
}
