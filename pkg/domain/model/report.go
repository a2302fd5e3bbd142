package model

import "time"

// ProjectReport is the document rendered by the report service
type ProjectReport struct {
	Project     *Project          `json:"project"`
	GeneratedAt time.Time         `json:"generated_at"`
	EVM         *ProjectEVM       `json:"evm"`
	Risks       []*Risk           `json:"risks"`
	Exposure    *Exposure         `json:"exposure"`
	Matrix      *RiskMatrix       `json:"matrix"`
	Simulation  *SimulationResult `json:"simulation,omitempty"`
}
