package transform

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestFixWord(t *testing.T) {
	testCases := []struct {
		word     string
		options  []string
		expected string
	}{
		{"Spain", Countries, "Spain"},
		{"Sopain", Countries, "Spain"},
		{"Germqany", Countries, "Germany"},
		{"Itakly", Countries, "Italy"},
		{"Cvhina", Countries, "China"},
		{"Belguiun", Countries, "Belgium"},
		{"Zzz", Countries, "Zzz"},
		{"Spian", Countries, "Spain"},
		// countries outside the known list are kept as they are
		{"Chile", Countries, "Chile"},
		{"Canada", Countries, "Canada"},
		{"Belarus", Countries, "Belarus"},
		{"Portugal", Countries, "Portugal"},
		{"pendhing", Statuses, StatusPending},
		{"pwnding", Statuses, StatusPending},
		{"compoletd", Statuses, StatusCompleted},
		{"complete", Statuses, StatusCompleted},
		{"fialed", Statuses, StatusFailed},
		{"faoleid", Statuses, StatusFailed},
		{"unknown", Statuses, "unknown"},
		{"processing", Statuses, "processing"},
		{"cancelled", Statuses, "cancelled"},
		{"fail", Statuses, StatusFailed},
		{"anything", nil, "anything"},
	}

	for _, test := range testCases {
		t.Run(test.word, func(t *testing.T) {
			require.Equal(t, test.expected, FixWord(test.word, test.options))
		})
	}
}

func TestClean(t *testing.T) {
	input := []Transaction{
		{ID: 1, Country: "United States of America", Status: "pwnding", Amount: 10},
		{ID: 2, Country: "Sopain", Status: "fialed", Amount: 20},
		{ID: 3, Country: "Sopain", Status: "complete", Amount: 30},
	}
	original := append([]Transaction(nil), input...)

	cleaned := Clean(input)
	expected := []Transaction{
		{ID: 1, Country: "USA", Status: StatusPending, Amount: 10},
		{ID: 2, Country: "Spain", Status: StatusFailed, Amount: 20},
		{ID: 3, Country: "Spain", Status: StatusCompleted, Amount: 30},
	}
	if diff := cmp.Diff(expected, cleaned); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff(original, input); diff != "" {
		t.Fatalf("input was modified: %s", diff)
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Country: "Spain", Status: StatusPending, Amount: 100},
		{ID: 2, Country: "Spain", Status: StatusPending, Amount: 300},
		{ID: 3, Country: "Spain", Status: StatusCompleted, Amount: 50},
		{ID: 4, Country: "Spain", Status: StatusFailed, Amount: 2_000_000},
		{ID: 5, Country: "Italy", Status: StatusCompleted, Amount: 75},
		{ID: 6, Country: "Italy", Status: StatusFailed, Amount: 1_000_000},
		{ID: 7, Country: "Italy", Status: StatusCompleted, Amount: 25},
		{ID: 8, Country: "Italy", Status: StatusFailed, Amount: 10},
	}

	expected := []CountrySummary{
		{
			Country:            "Italy",
			AverageOutstanding: 0,
			TotalCompleted:     100,
			// exactly 1,000,000 is not critical
			CriticalRate: 0,
			ErrorRate:    0.5,
		},
		{
			Country:            "Spain",
			AverageOutstanding: 200,
			TotalCompleted:     50,
			CriticalRate:       0.25,
			ErrorRate:          0.25,
		},
	}
	if diff := cmp.Diff(expected, Summarize(txs), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatal(diff)
	}

	require.Empty(t, Summarize(nil))
}

func TestParseCSV(t *testing.T) {
	txs, err := ParseCSV(strings.NewReader("amount,status,id,country,extra\n12.5,pending,7,Spain,x\n3,failed,8,USA,y\n"))
	require.NoError(t, err)
	expected := []Transaction{
		{ID: 7, Country: "Spain", Status: "pending", Amount: 12.5},
		{ID: 8, Country: "USA", Status: "failed", Amount: 3},
	}
	if diff := cmp.Diff(expected, txs); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseCSVErrors(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		missing bool
	}{
		{name: "empty", doc: "", missing: true},
		{name: "missing amount", doc: "id,country,status\n1,Spain,pending\n", missing: true},
		{name: "bad id", doc: "id,country,status,amount\nx,Spain,pending,1\n"},
		{name: "bad amount", doc: "id,country,status,amount\n1,Spain,pending,lots\n"},
		{name: "ragged", doc: "id,country,status,amount\n1,Spain\n"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(test.doc))
			require.Error(t, err)
			if test.missing {
				require.ErrorIs(t, err, ErrMissingColumn)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Country: "Spain", Status: "pending", Amount: 1234.5},
		{ID: 2, Country: "United States of America", Status: "failed", Amount: 50},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))
	require.Equal(t, "id,country,status,amount\n1,Spain,pending,1234.5\n2,United States of America,failed,50\n", buf.String())

	parsed, err := ParseCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(txs, parsed); diff != "" {
		t.Fatal(diff)
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummaryCSV(&buf, []CountrySummary{
		{Country: "Spain", AverageOutstanding: 200, TotalCompleted: 50.5, CriticalRate: 0.25, ErrorRate: 0.5},
	})
	require.NoError(t, err)
	require.Equal(t, "country,average_outstanding,total_completed,critical_rate,error_rate\nSpain,200,50.5,0.25,0.5\n", buf.String())
}
