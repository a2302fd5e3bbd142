package evm

import (
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/model/config"
)

// Classify returns the worse of the CPI and SPI classes. Undefined indices
// count as on track.
func Classify(m *model.Metrics, alert config.AlertConfig) model.PerformanceStatus {
	return worse(classify(m.CPI, alert.CPI), classify(m.SPI, alert.SPI))
}

func classify(index *float64, th config.Thresholds) model.PerformanceStatus {
	switch {
	case index == nil:
		return model.PerformanceOnTrack
	case *index < th.Critical:
		return model.PerformanceCritical
	case *index < th.Warning:
		return model.PerformanceWatch
	default:
		return model.PerformanceOnTrack
	}
}

var severity = map[model.PerformanceStatus]int{
	model.PerformanceOnTrack:  0,
	model.PerformanceWatch:    1,
	model.PerformanceCritical: 2,
}

func worse(a, b model.PerformanceStatus) model.PerformanceStatus {
	if severity[b] > severity[a] {
		return b
	}
	return a
}
