package records

// Sum totals a metric over records. Accessors are expected to map missing
// numerics to 0, so a bad record degrades to a zero contribution.
func Sum[T any](in []T, metric func(T) float64) float64 {
	total := 0.0
	for _, rec := range in {
		total += metric(rec)
	}
	return total
}

// Mean averages a metric over records; an empty input yields exactly 0,
// never NaN.
func Mean[T any](in []T, metric func(T) float64) float64 {
	if len(in) == 0 {
		return 0
	}
	return Sum(in, metric) / float64(len(in))
}

// GroupTotals sums a metric per group key in a single pass.
func GroupTotals[T any](in []T, key func(T) string, metric func(T) float64) map[string]float64 {
	out := make(map[string]float64)
	for _, rec := range in {
		out[key(rec)] += metric(rec)
	}
	return out
}

// GroupCounts counts records per group key.
func GroupCounts[T any](in []T, key func(T) string) map[string]int64 {
	out := make(map[string]int64)
	for _, rec := range in {
		out[key(rec)]++
	}
	return out
}

// Summary is the aggregate block returned alongside list views and exports.
type Summary struct {
	Count       int                           `json:"count"`
	Sums        map[string]float64            `json:"sums,omitempty"`
	Means       map[string]float64            `json:"means,omitempty"`
	Groups      map[string]map[string]float64 `json:"groups,omitempty"`
	GroupCounts map[string]int64              `json:"group_counts,omitempty"`
}

// Summarize computes sums and means for the named numeric columns and group
// totals of each metric keyed by a categorical column. Null cells count as
// 0, matching the missing-numeric rule used everywhere else.
func Summarize[T any](s Schema[T], in []T, metricKeys []string, groupKey string) Summary {
	out := Summary{
		Count: len(in),
		Sums:  make(map[string]float64, len(metricKeys)),
		Means: make(map[string]float64, len(metricKeys)),
	}

	var groupCol Column[T]
	groupOK := false
	if groupKey != "" {
		groupCol, groupOK = s.Column(groupKey)
		if groupOK {
			out.Groups = make(map[string]map[string]float64)
			out.GroupCounts = make(map[string]int64)
			for _, rec := range in {
				out.GroupCounts[groupCol.Value(rec).Display()]++
			}
		}
	}

	for _, key := range metricKeys {
		col, ok := s.Column(key)
		if !ok {
			continue
		}
		sum := 0.0
		for _, rec := range in {
			v := col.Value(rec)
			n := 0.0
			if !v.IsNull() {
				n = v.Num()
			}
			sum += n
			if groupOK {
				g := groupCol.Value(rec).Display()
				if out.Groups[g] == nil {
					out.Groups[g] = make(map[string]float64, len(metricKeys))
				}
				out.Groups[g][key] += n
			}
		}
		out.Sums[key] = sum
		if len(in) > 0 {
			out.Means[key] = sum / float64(len(in))
		} else {
			out.Means[key] = 0
		}
	}

	return out
}
