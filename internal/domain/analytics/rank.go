package analytics

// assignDenseRanks ranks rows already sorted by value descending. Equal
// values share a rank and the next distinct value takes the next rank,
// so values 5, 5, 3 rank 1, 1, 2.
func assignDenseRanks[T any](rows []T, value func(T) float64, set func(*T, int)) {
	rank := 0
	for i := range rows {
		if i == 0 || value(rows[i]) != value(rows[i-1]) {
			rank++
		}
		set(&rows[i], rank)
	}
}
