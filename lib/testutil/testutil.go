package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	devenv "txpipeline/dev/env"
	"txpipeline/internal/pages"
	"txpipeline/lib/telemetry"

	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", params.Name))
	if params.DbSchema == "" {
		return ServiceResult{}, cleanup
	}

	dbpath := ":memory:"
	if params.DbPath != "" && params.DbPath != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(params.DbPath)
		if err != nil {
			t.Fatal(err)
		}
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec(params.DbSchema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}

	return ServiceResult{DB: sqlite}, func() {
		sqlite.Close()
		cleanup()
	}
}

// WriteDataset writes each csv as transactions_page<N>.csv into dir, numbered
// from 1.
func WriteDataset(t testing.TB, dir string, csvs ...string) []string {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		t.Fatal(err)
	}
	var files []string
	for i, contents := range csvs {
		name := filepath.Join(dir, pages.FileName(pages.DefaultName, i+1))
		err := os.WriteFile(name, []byte(contents), 0666)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, name)
	}
	return files
}

// ReadTree returns every regular file under dir keyed by its slash separated
// path relative to dir.
func ReadTree(t testing.TB, dir string) map[string]string {
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(contents)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}
