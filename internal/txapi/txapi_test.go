package txapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"txpipeline/internal/pages"
	"txpipeline/internal/transform"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	first := Generate(GenerateOptions{Rows: 500, Seed: 42})
	second := Generate(GenerateOptions{Rows: 500, Seed: 42})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatal(diff)
	}

	other := Generate(GenerateOptions{Rows: 500, Seed: 43})
	require.NotEqual(t, first, other)
}

func TestGenerateRows(t *testing.T) {
	rows := Generate(GenerateOptions{Rows: 2000, Seed: 1})
	require.Len(t, rows, 2000)

	countries := map[string]bool{}
	for _, w := range countryWeights {
		countries[w.value] = true
	}
	statuses := map[string]bool{}
	for _, w := range statusWeights {
		statuses[w.value] = true
	}

	for i, row := range rows {
		require.Equal(t, int64(i+1), row.ID)
		require.True(t, countries[row.Country], row.Country)
		require.True(t, statuses[row.Status], row.Status)
		require.GreaterOrEqual(t, row.Amount, float64(minAmount))
		require.Less(t, row.Amount, float64(maxAmount))
	}

	require.Len(t, Generate(GenerateOptions{}), DefaultRows)
}

func TestWeightsSumToOne(t *testing.T) {
	for _, choices := range [][]weighted{countryWeights, statusWeights} {
		var sum float64
		for _, c := range choices {
			sum += c.weight
		}
		require.InDelta(t, 1, sum, 1e-9)
	}
}

func TestGeneratedValuesClean(t *testing.T) {
	for _, w := range countryWeights {
		cleaned := transform.Clean([]transform.Transaction{{Country: w.value, Status: transform.StatusPending}})
		require.Contains(t, transform.Countries, cleaned[0].Country, w.value)
	}
	for _, w := range statusWeights {
		cleaned := transform.Clean([]transform.Transaction{{Country: "Spain", Status: w.value}})
		require.Contains(t, transform.Statuses, cleaned[0].Status, w.value)
	}
}

func TestPaginate(t *testing.T) {
	rows := Generate(GenerateOptions{Rows: 2500, Seed: 7})
	paged, err := Paginate(rows, 1000)
	require.NoError(t, err)
	require.Len(t, paged, 3)

	var all []transform.Transaction
	for i, p := range paged {
		require.Equal(t, i+1, p.Number)
		parsed, err := transform.ParseCSV(bytes.NewReader(p.CSV))
		require.NoError(t, err)
		all = append(all, parsed...)
	}
	require.Equal(t, 0, paged[2].NextPage)
	require.Len(t, all, 2500)
	require.Equal(t, rows[0].ID, all[0].ID)
	require.Equal(t, rows[2499].ID, all[2499].ID)

	_, err = Paginate(nil, 1000)
	require.ErrorIs(t, err, pages.ErrNoPages)
}

func TestHandler(t *testing.T) {
	rows := Generate(GenerateOptions{Rows: 30, Seed: 3})
	paged, err := Paginate(rows, 10)
	require.NoError(t, err)
	handler, err := NewHandler(pages.Encode(paged))
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	defer server.Close()

	res, err := http.Get(server.URL + "/transactions")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var env pages.Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Len(t, env.Pages, 3)

	decoded, err := pages.Decode(body)
	require.NoError(t, err)
	if diff := cmp.Diff(paged, decoded); diff != "" {
		t.Fatal(diff)
	}

	health, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)

	post, err := http.Post(server.URL+"/transactions", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}
