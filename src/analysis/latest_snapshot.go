package analysis

import (
	"sort"

	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------
// Options Latest-Snapshot Resolver: reduce an underlying's full snapshot
// history to one row per contract. Pure projection; the history itself is
// never touched.
// -----------------------------------------------------------------------------

// LatestSnapshot returns the most recent observation of each contract in
// rows: stable sort by LastUpdated ascending, keep the last row seen per
// ContractSymbol. Ties therefore resolve to the later row in input order,
// deterministically. Output order is first appearance of each symbol.
func LatestSnapshot(rows []models.MOptionRow) []models.MOptionRow {
	if len(rows) == 0 {
		return nil
	}

	sorted := make([]models.MOptionRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastUpdated.Before(sorted[j].LastUpdated)
	})

	latest := make(map[string]models.MOptionRow)
	var order []string

	for _, row := range sorted {
		if _, seen := latest[row.ContractSymbol]; !seen {
			order = append(order, row.ContractSymbol)
		}
		latest[row.ContractSymbol] = row
	}

	out := make([]models.MOptionRow, 0, len(order))
	for _, symbol := range order {
		out = append(out, latest[symbol])
	}
	return out
}

// -----------------------------------------------------------------------------

// SplitLegs partitions a resolved chain into calls and puts, each sorted by
// strike ascending (null strikes last), the order a chain table is read in.
func SplitLegs(rows []models.MOptionRow) (calls, puts []models.MOptionRow) {
	for _, row := range rows {
		switch row.Type {
		case models.OptionCall:
			calls = append(calls, row)
		case models.OptionPut:
			puts = append(puts, row)
		}
	}
	sortByStrike(calls)
	sortByStrike(puts)
	return calls, puts
}

// -----------------------------------------------------------------------------

func sortByStrike(rows []models.MOptionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Strike, rows[j].Strike
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}
