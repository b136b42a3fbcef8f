package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/pipeline/modifiers"
)

// LoadMode controls how errors are handled during schema loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a schema.
type LoadResult struct {
	Graph     *object.Graph
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// Load reads a schema from a .cue file or a directory of them and compiles
// it with reg.
func Load(path string, reg *modifiers.Registry, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, []error{&CompileError{Field: "schema", Message: fmt.Sprintf("schema not found: %s", path), Err: err}}
	}

	var (
		cfg   = &load.Config{}
		args  []string
		files []string
	)
	if info.IsDir() {
		files, err = FindCUEFiles(path)
		if err != nil {
			return nil, []error{&CompileError{Field: "schema", Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}}
		}
		if len(files) == 0 {
			return nil, []error{&CompileError{Field: "schema", Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
		cfg.Dir = path
		args = []string{"."}
	} else {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
		files = []string{path}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, []error{&CompileError{Field: "schema", Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{formatCUEError("schema", inst.Err)}
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError("schema", err)}
	}

	result := &LoadResult{CUEValue: v, FileCount: len(files)}
	g, errs := CompileGraph(v, reg, mode)
	result.Graph = g
	return result, errs
}

// CompileString compiles schema source held in memory. filename is used in
// error positions only.
func CompileString(src, filename string, reg *modifiers.Registry) (*object.Graph, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(filename))
	g, errs := CompileGraph(v, reg, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return g, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
