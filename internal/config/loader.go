package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFlag    SourceKind = "flag"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for default/flag
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source
	Files   []string          // all loaded files, in load order
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "screenshader", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	res := &LoadResult{Sources: map[string]Source{}}
	raw := RawConfig{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		l := &fileLoader{seen: map[string]bool{}, sources: res.Sources}
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
		res.Files = l.files
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	res.Config = BuildEffectiveConfig(raw)
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// Validate checks the effective config, attributing errors to the file
// position that set the offending key.
func (r *LoadResult) Validate() error {
	return attachSourceContext(r.Config.Validate(), r.Sources)
}

// SetFlag overrides key with a command-line value and records it as the source.
func (r *LoadResult) SetFlag(key, flag string) {
	r.Sources[key] = Source{Kind: SourceFlag, Name: flag}
}

// fileLoader merges a config file over its includes, depth first. Each
// file is read once; a file that includes itself through a chain is an error.
type fileLoader struct {
	seen    map[string]bool
	sources map[string]Source
	files   []string
}

func (l *fileLoader) load(path string, chain []string) (RawConfig, error) {
	file := canonicalPath(path)
	if slices.Contains(chain, file) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), file)
	}
	if l.seen[file] {
		return RawConfig{}, nil
	}
	l.seen[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&own); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}

	keys := topLevel(&doc)
	merged := RawConfig{}
	for _, inc := range includeNodes(keys["include"]) {
		paths, err := expandInclude(file, inc.Value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", file, inc.Line, inc.Column, inc.Value, err)
		}
		for _, p := range paths {
			sub, err := l.load(p, append(chain, file))
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(sub)
		}
	}

	// The including file wins over everything it includes.
	for key, node := range keys {
		l.sources[key] = Source{Kind: SourceFile, File: file, Line: node.Line, Column: node.Column}
	}
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

// topLevel maps each top-level key of a document to its value node.
func topLevel(doc *yaml.Node) map[string]*yaml.Node {
	out := map[string]*yaml.Node{}
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		out[root.Content[i].Value] = root.Content[i+1]
	}
	return out
}

// includeNodes returns the scalar entries of an include value.
func includeNodes(n *yaml.Node) []*yaml.Node {
	switch {
	case n == nil:
		return nil
	case n.Kind == yaml.ScalarNode:
		return []*yaml.Node{n}
	case n.Kind == yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// expandInclude resolves an include against the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func expandInclude(baseFile, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if rest, ok := strings.CutPrefix(include, "~"); ok && (rest == "" || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = home + rest
	}
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(baseFile), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(include, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// attachSourceContext points a validation error at the position that set
// the offending key.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
