package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const WorkdirEnv = "SURFACE_TILER_WORKDIR"

var ErrNotADirectory = errors.New("not a directory")

// Folder holding the working files of the tool: SURFACE_TILER_WORKDIR when set, the module root when running tests,
// the folder of the executable otherwise
func GetRootFolder() (string, error) {
	if dir := os.Getenv(WorkdirEnv); dir != "" {
		return dir, nil
	}

	if strings.HasSuffix(os.Args[0], ".test") || strings.HasSuffix(os.Args[0], ".test.exe") {
		_, file, _, _ := runtime.Caller(0)
		return filepath.Dir(filepath.Dir(file)), nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Dir(executable), nil
}

// Creates directory and its parents unless it already exists. Fails if the path exists and is not a directory.
func CreateDirectoryIfDoesNotExist(directory string) error {
	info, err := os.Stat(directory)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.MkdirAll(directory, 0777)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotADirectory, directory)
	}
	return nil
}
