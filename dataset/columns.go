package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bcdannyboy/optlab/models"
)

// normalize folds a header to lower case without spaces, dashes or underscores.
func normalize(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// mapColumns resolves header positions through an alias table. The first
// matching column wins; unknown columns are ignored.
func mapColumns(header []string, aliases map[string]string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		field, ok := aliases[normalize(h)]
		if !ok {
			continue
		}
		if _, seen := cols[field]; !seen {
			cols[field] = i
		}
	}
	return cols
}

type row struct {
	record []string
	cols   map[string]int
}

func newRow(record []string, cols map[string]int) row {
	return row{record: record, cols: cols}
}

func (r row) get(field string) string {
	i, ok := r.cols[field]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r row) has(field string) bool {
	return r.get(field) != ""
}

func (r row) blank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// float parses field, returning def when the cell is empty or absent.
func (r row) float(field string, def float64) (float64, error) {
	v := r.get(field)
	if v == "" || strings.EqualFold(v, "nan") {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", models.ErrInvalidInput, field, v)
	}
	return f, nil
}
