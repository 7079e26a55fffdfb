// Package storage persists solved rigs and simulations as per-run
// directories under a base dir, each holding a metadata.json plus the result
// payloads.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Bubblyworld/slackline/internal/dynamics"
	"github.com/Bubblyworld/slackline/internal/statics"
)

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
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Line          string             `json:"line"`
	GapLength     float64            `json:"gap_length"`
	AnchorTension float64            `json:"anchor_tension,omitempty"`
	NaturalLength float64            `json:"natural_length,omitempty"`
	Loads         int                `json:"loads"`
	Dynamic       bool               `json:"dynamic"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes a run directory for a solved rig and, when dyn is non-nil, its
// simulation. The run id doubles as the directory name.
func (s *Store) Save(name string, cons statics.Constraints, rig *statics.Rig, dyn *dynamics.DynamicRig) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Timestamp:     time.Now(),
		Line:          cons.Line.Name,
		GapLength:     cons.GapLength,
		AnchorTension: cons.AnchorTension,
		NaturalLength: cons.NaturalLength,
		Loads:         len(cons.Loads),
		Dynamic:       dyn != nil,
		Metrics: map[string]float64{
			"max_tension":    rig.MaxTension(),
			"max_drop":       rig.MaxDrop(),
			"natural_length": rig.NaturalLength(),
			"arc_length":     rig.ArcLength(),
		},
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "rig.json"), rig); err != nil {
		return "", err
	}
	if dyn != nil {
		if err := writeJSON(filepath.Join(runDir, "sim.json"), dyn); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadRig(runID string) (*statics.Rig, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "rig.json"))
	if err != nil {
		return nil, err
	}
	var rig statics.Rig
	if err := json.Unmarshal(data, &rig); err != nil {
		return nil, err
	}
	return &rig, nil
}

func (s *Store) LoadSim(runID string) (*dynamics.DynamicRig, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "sim.json"))
	if err != nil {
		return nil, err
	}
	var dyn dynamics.DynamicRig
	if err := json.Unmarshal(data, &dyn); err != nil {
		return nil, err
	}
	return &dyn, nil
}
