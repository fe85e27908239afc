package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/descentsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Transitions []sim.StageTransitionEvent `json:"transitions"`
	Telemetry   []sim.TelemetrySample      `json:"telemetry"`
}

// ExportJSON writes a stored run, metadata and time series together, to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	transitions, err := s.LoadTransitions(runID)
	if err != nil {
		return err
	}
	telemetry, err := s.LoadTelemetry(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Transitions: transitions,
		Telemetry:   telemetry,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies a stored run's telemetry to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	telemetry, err := s.LoadTelemetry(runID)
	if err != nil {
		return err
	}
	return WriteTelemetryCSV(w, telemetry)
}
