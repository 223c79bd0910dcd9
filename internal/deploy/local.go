package deploy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const datasetSubdir = "dataset"

// LocalSink copies the dataset directory to Dir/dataset and writes the
// summary to Dir/final_dataset.csv.
type LocalSink struct {
	Dir string
}

func (LocalSink) Name() OutputType {
	return OutputLocal
}

func (s LocalSink) Write(ctx context.Context, bundle Bundle) (Report, error) {
	if s.Dir == "" {
		return Report{}, fmt.Errorf("local output directory is not configured")
	}
	dest := filepath.Join(s.Dir, datasetSubdir)

	err := checkDisjoint(bundle.DatasetDir, dest)
	if err != nil {
		return Report{}, err
	}
	err = os.RemoveAll(dest)
	if err != nil {
		return Report{}, err
	}
	copied, err := copyTree(ctx, bundle.DatasetDir, dest)
	if err != nil {
		return Report{}, fmt.Errorf("copy dataset: %w", err)
	}

	summary, err := bundle.SummaryCSV()
	if err != nil {
		return Report{}, err
	}
	err = os.WriteFile(filepath.Join(s.Dir, SummaryFile), summary, 0666)
	if err != nil {
		return Report{}, fmt.Errorf("write summary: %w", err)
	}

	return Report{
		Location: s.Dir,
		Pages:    len(bundle.Pages),
		Rows:     len(bundle.Records),
		Files:    copied + 1,
	}, nil
}

// the copy is wiped before writing, so it must not overlap the source
func checkDisjoint(src, dest string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	sep := string(filepath.Separator)
	if absSrc == absDest ||
		strings.HasPrefix(absDest, absSrc+sep) ||
		strings.HasPrefix(absSrc, absDest+sep) {
		return fmt.Errorf("local output %s overlaps the dataset directory %s", absDest, absSrc)
	}
	return nil
}

// copyTree copies every regular file below src into dest keeping relative
// paths and permissions, returning the number of files copied.
func copyTree(ctx context.Context, src, dest string) (int, error) {
	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		err = copyFile(path, target, info.Mode().Perm())
		if err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

func copyFile(src, dest string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// datasetFiles lists every regular file below dir as a slash separated path
// relative to dir, in lexical order. It is the same set copyTree copies.
func datasetFiles(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}
