package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// MatrixRow is the CSV shape of one contact-matrix cell.
type MatrixRow struct {
	AgentA        int     `csv:"agent_a"`
	AgentB        int     `csv:"agent_b"`
	Hours         float64 `csv:"hours"`
	LastTick      int     `csv:"last_tick"`
	Transmissions int     `csv:"transmissions"`
}

// Report is the full export shape.
type Report struct {
	Windows     []WindowStats `json:"windows"`
	Checkpoints []Checkpoint  `json:"checkpoints"`
	Panel       []int         `json:"panel"`
	Contacts    []MatrixRow   `json:"contacts"`
}

// Export assembles the full report from the recorder's retained state.
func (r *Recorder) Export() Report {
	rows := make([]MatrixRow, 0, r.matrix.Len())
	for k, cell := range r.matrix.Cells() {
		rows = append(rows, MatrixRow{
			AgentA:        k.Lo,
			AgentB:        k.Hi,
			Hours:         cell.Hours,
			LastTick:      cell.LastTick,
			Transmissions: cell.Transmissions,
		})
	}
	return Report{
		Windows:     r.windows,
		Checkpoints: r.checkpoints,
		Panel:       r.panel.IDs(),
		Contacts:    rows,
	}
}

// WriteWindowsCSV streams the closed windows as CSV.
func (r *Recorder) WriteWindowsCSV(w io.Writer) error {
	windows := r.windows
	if err := gocsv.Marshal(&windows, w); err != nil {
		return fmt.Errorf("writing windows csv: %w", err)
	}
	return nil
}

// WriteReport writes windows.csv, contacts.csv, and report.json into dir,
// creating it if needed.
func (r *Recorder) WriteReport(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	wf, err := os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		return fmt.Errorf("creating windows.csv: %w", err)
	}
	defer wf.Close()
	if err := r.WriteWindowsCSV(wf); err != nil {
		return err
	}

	report := r.Export()

	cf, err := os.Create(filepath.Join(dir, "contacts.csv"))
	if err != nil {
		return fmt.Errorf("creating contacts.csv: %w", err)
	}
	defer cf.Close()
	if err := gocsv.Marshal(&report.Contacts, cf); err != nil {
		return fmt.Errorf("writing contacts csv: %w", err)
	}

	jf, err := os.Create(filepath.Join(dir, "report.json"))
	if err != nil {
		return fmt.Errorf("creating report.json: %w", err)
	}
	defer jf.Close()
	enc := json.NewEncoder(jf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing report.json: %w", err)
	}
	return nil
}
