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

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Name      string             `json:"name,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Params    any                `json:"params,omitempty"`
	Summary   map[string]float64 `json:"summary,omitempty"`
	Columns   []string           `json:"columns"`
	Rows      int                `json:"rows"`
}

// Table is the numeric body of a run, one row per sample.
type Table struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

func (t Table) Column(name string) []float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	col := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			col = append(col, row[idx])
		}
	}
	return col
}

// Save writes a new run directory holding data.csv and metadata.json. The
// metadata is written last, so List never reports a run without its data. On
// failure the run directory is removed.
func (s *Store) Save(kind, name string, params any, summary map[string]float64, table Table) (runID string, err error) {
	now := time.Now()
	runID = fmt.Sprintf("%s_%d", kind, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	if err := os.Mkdir(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	if err := writeTable(filepath.Join(runDir, "data.csv"), table); err != nil {
		return "", fmt.Errorf("run %s: %w", runID, err)
	}

	meta := RunMetadata{
		ID:        runID,
		Kind:      kind,
		Name:      name,
		Timestamp: now,
		Params:    params,
		Summary:   summary,
		Columns:   table.Columns,
		Rows:      len(table.Rows),
	}
	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", fmt.Errorf("run %s: %w", runID, err)
	}

	return runID, nil
}

func writeTable(path string, table Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		rec := make([]string, len(row))
		for j, val := range row {
			rec[j] = strconv.FormatFloat(val, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func writeMetadata(path string, meta RunMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// List returns all readable runs, oldest first.
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
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTable(runID string) (Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "data.csv"))
	if err != nil {
		return Table{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	table := Table{
		Columns: records[0],
		Rows:    make([][]float64, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, field := range rec {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return Table{}, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			row[j] = val
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
