package txapi

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"txpipeline/internal/pages"
	"txpipeline/internal/transform"
)

const (
	DefaultRows        = 50000
	DefaultRowsPerPage = 1000
	minAmount          = 50
	maxAmount          = 5000
)

type weighted struct {
	value  string
	weight float64
}

// the misspelled values are intentional, the cleaning step corrects them
var countryWeights = []weighted{
	{"Spain", 0.45},
	{"Germany", 0.05},
	{"Italy", 0.1},
	{"USA", 0.1},
	{"China", 0.05},
	{"Belgium", 0.05},
	{"Sopain", 0.05},
	{"Germqany", 0.05},
	{"Itakly", 0.025},
	{"United States of America", 0.025},
	{"Cvhina", 0.025},
	{"Belguiun", 0.025},
}

var statusWeights = []weighted{
	{"pending", 0.4},
	{"completed", 0.3},
	{"failed", 0.1},
	{"pendhing", 0.025},
	{"pwnding", 0.05},
	{"compoletd", 0.025},
	{"complete", 0.025},
	{"fialed", 0.05},
	{"faoleid", 0.025},
}

func pick(r *rand.Rand, choices []weighted) string {
	x := r.Float64()
	var acc float64
	for _, c := range choices {
		acc += c.weight
		if x < acc {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}

type GenerateOptions struct {
	Rows int
	Seed uint64
}

// Generate produces synthetic transactions with ids 1..Rows. The same seed
// always yields the same rows.
func Generate(opts GenerateOptions) []transform.Transaction {
	rows := opts.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	out := make([]transform.Transaction, rows)
	for i := range out {
		out[i] = transform.Transaction{
			ID:      int64(i + 1),
			Country: pick(r, countryWeights),
			Status:  pick(r, statusWeights),
			Amount:  minAmount + r.Float64()*(maxAmount-minAmount),
		}
	}
	return out
}

// Paginate splits rows into pages of at most rowsPerPage rows, each encoded
// as a CSV document with a header.
func Paginate(rows []transform.Transaction, rowsPerPage int) ([]pages.Page, error) {
	if rowsPerPage <= 0 {
		rowsPerPage = DefaultRowsPerPage
	}
	if len(rows) == 0 {
		return nil, pages.ErrNoPages
	}

	var csvs [][]byte
	for start := 0; start < len(rows); start += rowsPerPage {
		end := min(start+rowsPerPage, len(rows))

		var buf bytes.Buffer
		err := transform.WriteCSV(&buf, rows[start:end])
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", len(csvs)+1, err)
		}
		csvs = append(csvs, buf.Bytes())
	}
	return pages.Build(csvs), nil
}
