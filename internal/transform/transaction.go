package transform

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrMissingColumn = errors.New("missing column")

// Columns is the header of every page CSV.
var Columns = []string{"id", "country", "status", "amount"}

type Transaction struct {
	ID      int64
	Country string
	Status  string
	Amount  float64
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseCSV reads a page document. Columns may come in any order, extra
// columns are ignored.
func ParseCSV(r io.Reader) ([]Transaction, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty document: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	for i, h := range header {
		index[h] = i
	}
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var out []Transaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		id, err := strconv.ParseInt(record[index["id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse id: %w", line, err)
		}
		amount, err := strconv.ParseFloat(record[index["amount"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse amount: %w", line, err)
		}
		out = append(out, Transaction{
			ID:      id,
			Country: record[index["country"]],
			Status:  record[index["status"]],
			Amount:  amount,
		})
	}
	return out, nil
}

func WriteCSV(w io.Writer, txs []Transaction) error {
	writer := csv.NewWriter(w)
	err := writer.Write(Columns)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		err := writer.Write([]string{
			strconv.FormatInt(tx.ID, 10),
			tx.Country,
			tx.Status,
			formatAmount(tx.Amount),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
