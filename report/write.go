package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bcdannyboy/optlab/models"
	"github.com/xhhuango/json"
)

func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteRolling writes rolling estimates as time,estimator,period,value rows
// keyed by the last bar of each window.
func WriteRolling(w io.Writer, estimates []models.VolatilityEstimate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "estimator", "period", "value"}); err != nil {
		return err
	}
	for _, e := range estimates {
		record := []string{
			e.End.Format(time.RFC3339),
			string(e.Estimator),
			e.Period,
			strconv.FormatFloat(vol(e.Value), 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the report to path.
func Save(path string, r *Report) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, r) })
}

// SaveRolling writes the rolling estimates CSV to path.
func SaveRolling(path string, estimates []models.VolatilityEstimate) error {
	return writeFile(path, func(w io.Writer) error { return WriteRolling(w, estimates) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
