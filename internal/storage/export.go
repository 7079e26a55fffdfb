package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/Bubblyworld/slackline/internal/statics"
)

// ExportCSV writes a rig profile as one row per sample with the columns
// x, y, n, l, T, A.
func ExportCSV(path string, rig *statics.Rig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"x", "y", "n", "l", "T", "A"}); err != nil {
		return err
	}
	for i := range rig.X {
		row := []string{
			strconv.FormatFloat(rig.X[i], 'f', 6, 64),
			strconv.FormatFloat(rig.Y[i], 'f', 6, 64),
			strconv.FormatFloat(rig.N[i], 'f', 6, 64),
			strconv.FormatFloat(rig.L[i], 'f', 6, 64),
			strconv.FormatFloat(rig.T[i], 'f', 3, 64),
			strconv.FormatFloat(rig.A[i], 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// ExportJSON writes any result payload as indented JSON, typically to a file
// or stdout.
func ExportJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
