package keymap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for keymap files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported keymap format")

// Format is a keymap file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseError represents an error while parsing a keymap file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader loads keymap files.
type Loader struct {
	// searchPaths are directories to search for keymap files.
	searchPaths []string
}

// NewLoader creates a new keymap loader.
func NewLoader(searchPaths ...string) *Loader {
	return &Loader{
		searchPaths: append([]string(nil), searchPaths...),
	}
}

// AddSearchPath adds a directory to search for keymap files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// SearchPaths returns the configured search directories.
func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.searchPaths...)
}

// LoadFile loads a keymap file, choosing the decoder from its extension.
func (l *Loader) LoadFile(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keymap file: %w", err)
	}

	f, err := Parse(path, data, format)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// LoadAll loads every supported file in the search paths, in directory then
// name order. Files that fail to load are skipped and reported together.
func (l *Loader) LoadAll() ([]*File, error) {
	files := make([]*File, 0)
	var errs []error

	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("reading keymap dir %s: %w", dir, err))
			}
			continue
		}

		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := FormatFromPath(entry.Name()); err != nil {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			f, err := l.LoadFile(filepath.Join(dir, name))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			files = append(files, f)
		}
	}

	return files, errors.Join(errs...)
}

// Parse decodes keymap data in the given format. source names the data in
// error messages.
func Parse(source string, data []byte, format Format) (*File, error) {
	switch format {
	case FormatTOML:
		return parseTOML(source, data)
	case FormatYAML:
		return parseYAML(source, data)
	case FormatJSON:
		return parseJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

func parseTOML(source string, data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return &f, nil
}

func parseYAML(source string, data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return &f, nil
}

// parseJSON walks the document with gjson. Non-string values are taken by
// their string form.
func parseJSON(source string, data []byte) (*File, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}

	root := gjson.ParseBytes(data)
	f := &File{}

	root.Get("bindings").ForEach(func(_, item gjson.Result) bool {
		f.Bindings = append(f.Bindings, Binding{
			Keys:    item.Get("keys").String(),
			Command: item.Get("command").String(),
			Context: item.Get("context").String(),
		})
		return true
	})

	keymaps := root.Get("keymaps")
	if keymaps.IsObject() {
		f.Keymaps = make(map[string]map[string]string)
		keymaps.ForEach(func(context, table gjson.Result) bool {
			entries := make(map[string]string)
			table.ForEach(func(keys, command gjson.Result) bool {
				entries[keys.String()] = command.String()
				return true
			})
			f.Keymaps[context.String()] = entries
			return true
		})
	}

	return f, nil
}
