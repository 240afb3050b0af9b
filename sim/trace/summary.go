package trace

// Summary aggregates statistics from a processed-event log.
type Summary struct {
	TotalEvents  int
	KindCounts   map[string]int
	FirstTime    float64
	LastTime     float64
	UniqueTrucks int
}

// Summarize computes aggregate statistics from records. Safe for empty logs.
func Summarize(records []Record) *Summary {
	s := &Summary{KindCounts: make(map[string]int)}
	if len(records) == 0 {
		return s
	}

	s.TotalEvents = len(records)
	s.FirstTime = records[0].Time
	s.LastTime = records[0].Time

	trucks := make(map[string]struct{})
	for _, r := range records {
		s.KindCounts[r.Kind]++
		if r.Time < s.FirstTime {
			s.FirstTime = r.Time
		}
		if r.Time > s.LastTime {
			s.LastTime = r.Time
		}
		if r.TruckID != "" && r.TruckID != "SYSTEM" {
			trucks[r.TruckID] = struct{}{}
		}
	}
	s.UniqueTrucks = len(trucks)
	return s
}
