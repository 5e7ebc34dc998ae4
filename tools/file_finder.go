package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/surface_tiler/internal/tiler"
)

var shapeFileExtensions = map[string]bool{
	".geojson": true,
	".json":    true,
}

type FileFinder interface {
	GetShapeFilesToProcess(opts *tiler.TilerOptions) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetShapeFilesToProcess(opts *tiler.TilerOptions) ([]string, error) {
	// If folder processing is not enabled then the file is given by -input flag, otherwise look for GeoJSON files in
	// -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return f.getShapeFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getShapeFilesFromInputFolder(opts *tiler.TilerOptions) ([]string, error) {
	var files = make([]string, 0)

	baseInfo, err := os.Stat(opts.Input)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !opts.Recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			if shapeFileExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return files, nil
}
