package pages

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

const DefaultName = "transactions"

var fileNameRe = regexp.MustCompile(`^(.+)_page(\d+)\.csv$`)

func FileName(name string, number int) string {
	return fmt.Sprintf("%s_page%d.csv", name, number)
}

// ParseFileName is the inverse of FileName.
func ParseFileName(file string) (name string, number int, ok bool) {
	m := fileNameRe.FindStringSubmatch(file)
	if m == nil {
		return "", 0, false
	}
	number, err := strconv.Atoi(m[2])
	if err != nil || number <= 0 {
		return "", 0, false
	}
	return m[1], number, true
}

// WriteDir recreates dir and writes one file per page into it, returning the
// written paths in page order. Page numbers must be positive and unique,
// otherwise nothing is written.
func WriteDir(dir, name string, pages []Page) ([]string, error) {
	seen := map[int]bool{}
	for _, p := range pages {
		if p.Number <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPageNumber, p.Number)
		}
		if seen[p.Number] {
			return nil, fmt.Errorf("%w: page %d is present twice", ErrInvalidPageNumber, p.Number)
		}
		seen[p.Number] = true
	}

	err := os.RemoveAll(dir)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(pages))
	for _, p := range pages {
		path := filepath.Join(dir, FileName(name, p.Number))
		err := os.WriteFile(path, p.CSV, 0666)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// ReadDir loads every page file in dir sorted by page number. Files that do
// not follow the page naming scheme are skipped.
func ReadDir(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []Page
	seen := map[int]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, number, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		if other, dup := seen[number]; dup {
			return nil, fmt.Errorf("page %d is present twice: %s and %s", number, other, e.Name())
		}
		seen[number] = e.Name()

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Page{
			Number: number,
			CSV:    data,
			File:   e.Name(),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoPages)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Number < out[j].Number
	})
	for i := range out {
		if i < len(out)-1 {
			out[i].NextPage = 1
		}
	}
	return out, nil
}
