// Package batchspec reads livy.toml, an optional file describing a batch so
// `livy submit` does not need a long list of flags.
package batchspec

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/livyctl/livyctl/internal/api"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the batch definition file `livy init` writes.
const DefaultFile = "livy.toml"

type document struct {
	Livy struct {
		Batch Spec `toml:"batch"`
	} `toml:"livy"`
}

// Spec is the [livy.batch] table.
type Spec struct {
	File           string            `toml:"file"`
	ClassName      string            `toml:"class_name,omitempty"`
	Args           []string          `toml:"args,omitempty"`
	Name           string            `toml:"name,omitempty"`
	ProxyUser      string            `toml:"proxy_user,omitempty"`
	Queue          string            `toml:"queue,omitempty"`
	DriverMemory   string            `toml:"driver_memory,omitempty"`
	DriverCores    int               `toml:"driver_cores,omitempty"`
	ExecutorMemory string            `toml:"executor_memory,omitempty"`
	ExecutorCores  int               `toml:"executor_cores,omitempty"`
	NumExecutors   int               `toml:"num_executors,omitempty"`
	Jars           []string          `toml:"jars,omitempty"`
	PyFiles        []string          `toml:"py_files,omitempty"`
	Files          []string          `toml:"files,omitempty"`
	Archives       []string          `toml:"archives,omitempty"`
	Conf           map[string]string `toml:"conf,omitempty"`
	PreSubmit      []string          `toml:"pre_submit,omitempty"`
}

// Load reads the batch definition at path. Relative local paths in it are resolved
// against the directory of the file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("batch spec not found: %s. Please run `livy init` to create one", path)
		}
		return nil, fmt.Errorf("failed to read batch spec: %w", err)
	}

	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown keys in %s:\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	spec := doc.Livy.Batch
	if strings.TrimSpace(spec.File) == "" {
		return nil, fmt.Errorf("'livy.batch.file' is required in %s", path)
	}

	base := filepath.Dir(path)
	spec.File = resolve(base, spec.File)
	for _, list := range []*[]string{&spec.Jars, &spec.PyFiles, &spec.Files, &spec.Archives} {
		for i, p := range *list {
			(*list)[i] = resolve(base, p)
		}
	}
	return &spec, nil
}

func resolve(base, p string) string {
	if isRemote(p) || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// isRemote reports whether p is a URI such as s3://bucket/key or hdfs:///x.
func isRemote(p string) bool {
	return strings.Contains(p, "://")
}

// Apply fills the fields of req left empty on the command line.
func (s *Spec) Apply(req *api.CreateBatchRequest) {
	setString(&req.File, s.File)
	setString(&req.ClassName, s.ClassName)
	setString(&req.Name, s.Name)
	setString(&req.ProxyUser, s.ProxyUser)
	setString(&req.Queue, s.Queue)
	setString(&req.DriverMemory, s.DriverMemory)
	setString(&req.ExecutorMemory, s.ExecutorMemory)
	setInt(&req.DriverCores, s.DriverCores)
	setInt(&req.ExecutorCores, s.ExecutorCores)
	setInt(&req.NumExecutors, s.NumExecutors)
	setList(&req.Args, s.Args)
	setList(&req.Jars, s.Jars)
	setList(&req.PyFiles, s.PyFiles)
	setList(&req.Files, s.Files)
	setList(&req.Archives, s.Archives)

	if len(s.Conf) > 0 {
		conf := maps.Clone(s.Conf)
		maps.Copy(conf, req.Conf)
		req.Conf = conf
	}
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	if len(*dst) == 0 && len(v) > 0 {
		*dst = append([]string{}, v...)
	}
}

// ExpandPaths replaces glob patterns in paths with the local files they match.
// Remote URIs and plain paths are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if isRemote(p) || !hasMeta(p) {
			out = append(out, p)
			continue
		}

		if !doublestar.ValidatePathPattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", p)
		}
		out = append(out, matches...)
	}
	return out, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// Template returns the content `livy init` writes for a script.
func Template(script string) ([]byte, error) {
	var doc document
	doc.Livy.Batch = Spec{
		File:           script,
		DriverMemory:   "1g",
		ExecutorMemory: "1g",
		NumExecutors:   2,
		Conf:           map[string]string{"spark.submit.deployMode": "cluster"},
	}

	body, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render batch spec: %w", err)
	}

	header := "# Batch definition for `livy submit --spec`.\n" +
		"# Command line flags take precedence over values here.\n\n"
	return append([]byte(header), body...), nil
}
