package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// baseColumns are the fixed CSV columns; every distinct detail key across the
// log becomes an extra column after them, in sorted order.
var baseColumns = []string{"time", "event_id", "truck_id", "node_id", "event_type"}

// WriteCSV writes the records as CSV with flattened detail columns.
func WriteCSV(w io.Writer, records []Record) error {
	keySet := make(map[string]struct{})
	for _, r := range records {
		for k := range r.Details {
			keySet[k] = struct{}{}
		}
	}
	detailKeys := make([]string, 0, len(keySet))
	for k := range keySet {
		detailKeys = append(detailKeys, k)
	}
	sort.Strings(detailKeys)

	cw := csv.NewWriter(w)
	header := append(append([]string(nil), baseColumns...), detailKeys...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("trace: write header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range records {
		row[0] = strconv.FormatFloat(r.Time, 'g', -1, 64)
		row[1] = strconv.FormatUint(r.EventID, 10)
		row[2] = r.TruckID
		row[3] = r.NodeID
		row[4] = r.Kind
		for i, k := range detailKeys {
			row[len(baseColumns)+i] = r.Details[k]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("trace: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the records to the file at path.
func ExportCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: create %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
