package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/descentsim/internal/config"
	"github.com/san-kum/descentsim/internal/sim"
	"github.com/san-kum/descentsim/internal/vehicle"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile    = "metadata.json"
	telemetryFile   = "telemetry.csv"
	transitionsFile = "transitions.json"
)

var telemetryHeader = []string{
	"time", "altitude", "velocity", "mass", "fuel", "stage", "thrust", "throttle", "acceleration",
}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunMetadata holds everything about a run except its time series.
type RunMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Config        config.Config      `json:"config"`
	Outcome       sim.Outcome        `json:"outcome"`
	FinalStage    vehicle.Stage      `json:"final_stage"`
	Time          float64            `json:"time"`
	Steps         int                `json:"steps"`
	FinalVelocity float64            `json:"final_velocity"`
	FinalMass     float64            `json:"final_mass"`
	FinalFuel     float64            `json:"final_fuel"`
	FuelMax       float64            `json:"fuel_max"`
	PeakGLoad     float64            `json:"peak_g_load"`
	PeakHeating   float64            `json:"peak_heating"`
	Metrics       map[string]float64 `json:"metrics"`
}

func (s *Store) Save(cfg config.Config, sum *sim.Summary) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("descent_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Timestamp:     now,
		Config:        cfg,
		Outcome:       sum.Outcome,
		FinalStage:    sum.FinalStage,
		Time:          sum.Time,
		Steps:         sum.Steps,
		FinalVelocity: sum.FinalVelocity,
		FinalMass:     sum.FinalMass,
		FinalFuel:     sum.FinalFuel,
		FuelMax:       sum.FuelMax,
		PeakGLoad:     sum.PeakGLoad,
		PeakHeating:   sum.PeakHeating,
		Metrics:       sum.Metrics,
	}

	if err := writeRun(runDir, meta, sum); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, sum *sim.Summary) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(runDir, transitionsFile), sum.Transitions); err != nil {
		return err
	}
	return writeFile(filepath.Join(runDir, telemetryFile), func(w io.Writer) error {
		return WriteTelemetryCSV(w, sum.Telemetry)
	})
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeFile creates path and reports the first of the write and close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// WriteTelemetryCSV writes samples in the on-disk telemetry format.
func WriteTelemetryCSV(out io.Writer, samples []sim.TelemetrySample) error {
	w := csv.NewWriter(out)

	if err := w.Write(telemetryHeader); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, t := range samples {
		row := []string{
			f(t.Time), f(t.Altitude), f(t.Velocity), f(t.Mass), f(t.Fuel),
			t.Stage.String(), f(t.Thrust), f(t.Throttle), f(t.Acceleration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := s.readJSON(runID, metadataFile, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTransitions(runID string) ([]sim.StageTransitionEvent, error) {
	var events []sim.StageTransitionEvent
	if err := s.readJSON(runID, transitionsFile, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) readJSON(runID, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s/%s: %w", runID, name, err)
	}
	return nil
}

func (s *Store) LoadTelemetry(runID string) ([]sim.TelemetrySample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(telemetryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.TelemetrySample{}, nil
	}

	samples := make([]sim.TelemetrySample, 0, len(records)-1)
	for i, record := range records[1:] {
		sample, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", telemetryFile, i+2, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func parseSample(record []string) (sim.TelemetrySample, error) {
	var sample sim.TelemetrySample

	stage, err := vehicle.ParseStage(record[5])
	if err != nil {
		return sample, err
	}
	sample.Stage = stage

	fields := []*float64{
		&sample.Time, &sample.Altitude, &sample.Velocity, &sample.Mass, &sample.Fuel,
		nil, &sample.Thrust, &sample.Throttle, &sample.Acceleration,
	}
	for i, dst := range fields {
		if dst == nil {
			continue
		}
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return sample, err
		}
		*dst = v
	}
	return sample, nil
}
