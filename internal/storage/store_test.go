package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Records: []sim.Record{
			{Tick: 1, Time: 1, Indicator: 0.5, Crossings: 3, MeanPosition: 0.41, Foreground: 0.5},
			{Tick: 2, Time: 2, Indicator: -0.25, Crossings: -1, MeanPosition: 0.52, Foreground: 0.46},
		},
		Metrics: map[string]float64{
			"throughput": 1.0,
		},
		StepsTaken: 2,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Coil.Loops = 3

	runID, err := st.Save("test", cfg, 28, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Loops != 3 || meta.Carriers != 28 || meta.Ticks != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["throughput"] != 1.0 {
		t.Errorf("expected throughput 1.0, got %f", meta.Metrics["throughput"])
	}
	if meta.Config == nil || *meta.Config != *cfg {
		t.Errorf("config not preserved: %+v", meta.Config)
	}

	records, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Crossings != -1 || records[1].Indicator != -0.25 {
		t.Errorf("unexpected record: %+v", records[1])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save("a", config.DefaultConfig(), 12, sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save("b", config.DefaultConfig(), 12, sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "a" {
		t.Errorf("expected oldest run first, got %s", runs[0].Name)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("test", config.DefaultConfig(), 12, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	metaPath := filepath.Join(runDir, "metadata.json")
	csvPath := filepath.Join(runDir, "series.csv")

	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		t.Error("series.csv not created")
	}
}

func TestLoadSeriesMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("tick,time,indicator,crossings,mean_position,foreground\n1,1,x,0,0.5,0.5\n")
	if err := os.WriteFile(filepath.Join(runDir, "series.csv"), data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSeries("bad"); err == nil {
		t.Error("expected parse error")
	}
}
