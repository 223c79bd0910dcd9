package restyutil

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput map[string]string

func (m memoryOutput) Write(id string, contents string) {
	m[id] = contents
}

func withDebugLogging(t testing.TB) {
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(original)
	})
}

func TestInstrumentClientDumps(t *testing.T) {
	withDebugLogging(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	output := memoryOutput{}
	client := resty.New()
	InstrumentClient(client, nil, output)

	for i := 0; i < 2; i++ {
		res, err := client.R().SetBody(map[string]string{"q": "pages"}).Post(server.URL + "/search")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode())
	}

	require.Len(t, output, 2)
	dump := output["1"]
	require.Contains(t, dump, "POST")
	require.Contains(t, dump, "/search")
	require.Contains(t, dump, "X-Test")
	require.Contains(t, dump, `{"ok":true}`)
}

func TestInstrumentClientWithoutOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resty.New()
	InstrumentClient(client, nil, nil)
	res, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.True(t, res.IsError())
}

func TestTruncateBody(t *testing.T) {
	short := "abc"
	require.Equal(t, short, truncateBody(short))

	long := strings.Repeat("x", maxDumpedBody+1000)
	truncated := truncateBody(long)
	require.Less(t, len(truncated), len(long))
	require.True(t, strings.HasSuffix(truncated, "(1000 bytes truncated)"))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), nil, 0666))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	require.Equal(t, dir, output.Dir())
	output.Write("7", "exchange")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	contents, err := os.ReadFile(filepath.Join(dir, "7.txt"))
	require.NoError(t, err)
	require.Equal(t, "exchange", string(contents))
}
