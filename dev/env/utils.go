package devenv

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"txpipeline/lib/configutil"
)

const moduleName = "txpipeline"

var modName = regexp.MustCompile(`(?m)^module *([\w\-_/.]+)$`)

func isWorkspaceRoot(currentdir string) bool {
	mod, err := os.ReadFile(filepath.Join(currentdir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == moduleName
}

func GetWorkspaceRoot() (string, error) {
	currentdir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs("/")
	if err != nil {
		return "", err
	}

	for currentdir != root {
		if !isWorkspaceRoot(currentdir) {
			currentdir = filepath.Dir(currentdir)
			continue
		}
		return currentdir, nil
	}

	return "", os.ErrNotExist
}

func GetStateFilePath(path string) (string, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state", path), nil
}

func GetStateFile(path string) ([]byte, error) {
	statePath, err := GetStateFilePath(path)
	if err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(statePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no file at %s", statePath)
	}
	return contents, err
}

func GetStateConfig[T any](path string) (T, error) {
	statePath, err := GetStateFilePath(path)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](statePath)
}

// ResolvePath expands a leading "<dev_state>" into the workspace's dev/.state
// directory, any other path is returned as is.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "<dev_state>") {
		return path, nil
	}

	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(filepath.Join(root, "dev", ".state"), 0777)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimPrefix(path, "<dev_state>")
	subpath = strings.TrimLeft(subpath, `/\`)
	return filepath.Join(root, "dev", ".state", subpath), nil
}
