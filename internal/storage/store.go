package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/sim"
)

var seriesHeader = []string{"tick", "time", "indicator", "crossings", "mean_position", "foreground"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Loops     int                `json:"loops"`
	Radius    float64            `json:"radius"`
	Drive     string             `json:"drive"`
	Ticks     int                `json:"ticks"`
	Carriers  int                `json:"carriers"`
	Config    *config.Config     `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and series.csv under a new run directory.
func (s *Store) Save(name string, cfg *config.Config, carriers int, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Loops:     cfg.Coil.Loops,
		Radius:    cfg.Coil.Radius,
		Drive:     cfg.Drive.Kind,
		Ticks:     result.StepsTaken,
		Carriers:  carriers,
		Config:    cfg,
		Metrics:   result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "series.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(seriesHeader); err != nil {
		return "", err
	}
	for _, rec := range result.Records {
		row := []string{
			strconv.Itoa(rec.Tick),
			strconv.FormatFloat(rec.Time, 'f', 6, 64),
			strconv.FormatFloat(rec.Indicator, 'f', 6, 64),
			strconv.Itoa(rec.Crossings),
			strconv.FormatFloat(rec.MeanPosition, 'f', 6, 64),
			strconv.FormatFloat(rec.Foreground, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns stored runs, oldest first. Unreadable entries are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reads series.csv back into records.
func (s *Store) LoadSeries(runID string) ([]sim.Record, error) {
	csvPath := filepath.Join(s.baseDir, runID, "series.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(seriesHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return []sim.Record{}, nil
	}

	records := make([]sim.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", csvPath, i+2, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(row []string) (sim.Record, error) {
	var rec sim.Record
	var err error
	if rec.Tick, err = strconv.Atoi(row[0]); err != nil {
		return rec, err
	}
	if rec.Time, err = strconv.ParseFloat(row[1], 64); err != nil {
		return rec, err
	}
	if rec.Indicator, err = strconv.ParseFloat(row[2], 64); err != nil {
		return rec, err
	}
	if rec.Crossings, err = strconv.Atoi(row[3]); err != nil {
		return rec, err
	}
	if rec.MeanPosition, err = strconv.ParseFloat(row[4], 64); err != nil {
		return rec, err
	}
	if rec.Foreground, err = strconv.ParseFloat(row[5], 64); err != nil {
		return rec, err
	}
	return rec, nil
}
