package devenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetWorkspaceRoot(t *testing.T) {
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "go.mod"))
	require.NoError(t, err)
}

func TestResolvePath(t *testing.T) {
	plain, err := ResolvePath("dataset/transactions_page1.csv")
	require.NoError(t, err)
	require.Equal(t, "dataset/transactions_page1.csv", plain)

	root, err := GetWorkspaceRoot()
	require.NoError(t, err)
	resolved, err := ResolvePath("<dev_state>/ledger.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "ledger.db"), resolved)
	require.True(t, strings.HasPrefix(resolved, root))
}
