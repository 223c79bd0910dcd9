package transform

import (
	"encoding/csv"
	"io"
	"sort"
)

// failed transactions above this amount count towards the critical rate
const CriticalAmount = 1_000_000

var SummaryColumns = []string{
	"country",
	"average_outstanding",
	"total_completed",
	"critical_rate",
	"error_rate",
}

type CountrySummary struct {
	Country            string
	AverageOutstanding float64
	TotalCompleted     float64
	CriticalRate       float64
	ErrorRate          float64
}

type countryStats struct {
	total        int
	pending      int
	pendingSum   float64
	completedSum float64
	failed       int
	critical     int
}

// Summarize aggregates cleaned transactions per country, one row for every
// country that has at least one transaction, sorted by country.
func Summarize(txs []Transaction) []CountrySummary {
	stats := map[string]*countryStats{}
	for _, tx := range txs {
		s, ok := stats[tx.Country]
		if !ok {
			s = &countryStats{}
			stats[tx.Country] = s
		}
		s.total++
		switch tx.Status {
		case StatusPending:
			s.pending++
			s.pendingSum += tx.Amount
		case StatusCompleted:
			s.completedSum += tx.Amount
		case StatusFailed:
			s.failed++
			if tx.Amount > CriticalAmount {
				s.critical++
			}
		}
	}

	out := make([]CountrySummary, 0, len(stats))
	for country, s := range stats {
		summary := CountrySummary{
			Country:        country,
			TotalCompleted: s.completedSum,
			ErrorRate:      float64(s.failed) / float64(s.total),
			CriticalRate:   float64(s.critical) / float64(s.total),
		}
		if s.pending > 0 {
			summary.AverageOutstanding = s.pendingSum / float64(s.pending)
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Country < out[j].Country
	})
	return out
}

func WriteSummaryCSV(w io.Writer, rows []CountrySummary) error {
	writer := csv.NewWriter(w)
	err := writer.Write(SummaryColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := writer.Write([]string{
			r.Country,
			formatAmount(r.AverageOutstanding),
			formatAmount(r.TotalCompleted),
			formatAmount(r.CriticalRate),
			formatAmount(r.ErrorRate),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
