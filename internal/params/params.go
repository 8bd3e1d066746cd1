// Package params reads and writes the runtime parameter file: one
// `name value` pair per line, fed to the post-process shader as float uniforms.
package params

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxEntries bounds the number of parameters read from the file.
	MaxEntries = 16
	// MaxNameLen bounds a parameter name in bytes.
	MaxNameLen = 63
	// DefaultPath is where the compositor looks for parameters unless configured otherwise.
	DefaultPath = "/tmp/screenshader.params"
)

// Param is a named shader input.
type Param struct {
	Name  string  `json:"name"`
	Value float32 `json:"value"`
}

func (p Param) String() string {
	return p.Name + " " + strconv.FormatFloat(float64(p.Value), 'g', -1, 32)
}

// Parse reads up to MaxEntries parameters. A value is the longest decimal
// prefix of the second field; lines without one are skipped, as are lines
// longer than maxLineLen. Names longer than MaxNameLen are truncated.
func Parse(r io.Reader) ([]Param, error) {
	var out []Param
	br := bufio.NewReader(r)
	for len(out) < MaxEntries {
		line, err := readLine(br)
		if line != "" {
			if p, ok := parseLine(line); ok {
				out = append(out, p)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to read params: %w", err)
		}
	}
	return out, nil
}

// maxLineLen bounds a single params line in bytes.
const maxLineLen = 4096

// readLine returns the next line, or "" when it exceeds maxLineLen. The rest
// of an over-long line is consumed and dropped.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineLen {
				tooLong, buf = true, nil
			}
		}
		if err != nil || !isPrefix {
			if tooLong {
				return "", err
			}
			return string(buf), err
		}
	}
}

func parseLine(line string) (Param, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Param{}, false
	}
	v, ok := leadingFloat(fields[1])
	if !ok {
		return Param{}, false
	}
	name := fields[0]
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	return Param{Name: name, Value: v}, true
}

// leadingFloat parses the longest prefix of s that is a decimal number.
// Out-of-range values saturate to infinity.
func leadingFloat(s string) (float32, bool) {
	end := 0
	for end < len(s) && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		end++
	}
	for ; end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 32)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return float32(v), true
		}
	}
	return 0, false
}

// Validate checks a parameter can be written and read back unchanged.
func (p Param) Validate() error {
	switch {
	case p.Name == "":
		return errors.New("empty parameter name")
	case len(p.Name) > MaxNameLen:
		return fmt.Errorf("parameter name %q longer than %d bytes", p.Name, MaxNameLen)
	case strings.ContainsAny(p.Name, " \t\r\n"):
		return fmt.Errorf("parameter name %q contains whitespace", p.Name)
	case math.IsNaN(float64(p.Value)) || math.IsInf(float64(p.Value), 0):
		return fmt.Errorf("parameter %q has non-finite value", p.Name)
	}
	return nil
}

// ParseAssignment parses "name=value".
func ParseAssignment(s string) (Param, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return Param{}, fmt.Errorf("invalid assignment %q (want name=value)", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return Param{}, fmt.Errorf("invalid value for %q: %w", name, err)
	}
	p := Param{Name: strings.TrimSpace(name), Value: float32(v)}
	return p, p.Validate()
}

// Merge applies updates over base, replacing values by name and appending
// new names in order.
func Merge(base, updates []Param) []Param {
	out := append([]Param(nil), base...)
	for _, u := range updates {
		replaced := false
		for i := range out {
			if out[i].Name == u.Name {
				out[i].Value = u.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, u)
		}
	}
	return out
}

// Read parses the parameter file at path. A missing file yields no parameters.
func Read(path string) ([]Param, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open params file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write replaces the parameter file atomically.
func Write(path string, ps []Param) error {
	if len(ps) > MaxEntries {
		return fmt.Errorf("too many parameters: %d (max %d)", len(ps), MaxEntries)
	}
	var b strings.Builder
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return err
		}
		b.WriteString(p.String())
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create params file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write params file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write params file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write params file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace params file: %w", err)
	}
	return nil
}

// Source polls a parameter file for changes by modification time and size.
type Source struct {
	path    string
	present bool
	modTime time.Time
	size    int64
}

// NewSource returns a source for path that has not been read yet.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the watched file path.
func (s *Source) Path() string {
	return s.path
}

// Poll re-reads the file when it changed since the last poll. changed is
// false when the file is untouched, or still absent. A file that disappears
// reports a change to zero parameters.
func (s *Source) Poll() (ps []Param, changed bool, err error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to stat params file: %w", err)
		}
		if !s.present {
			return nil, false, nil
		}
		s.present = false
		s.modTime = time.Time{}
		s.size = 0
		return nil, true, nil
	}

	if s.present && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil, false, nil
	}

	ps, err = Read(s.path)
	if err != nil {
		return nil, false, err
	}
	s.present = true
	s.modTime = info.ModTime()
	s.size = info.Size()
	return ps, true, nil
}
