// Package source decodes input documents (JSON, YAML, CUE) into native
// values. Object key order is kept for every format.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/jqcty/internal/native"
)

// Format names an input document format.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

// ErrUnknownFormat is returned for format names that are not supported.
var ErrUnknownFormat = errors.New("unknown input format")

// ParseFormat parses a format name. "" and "auto" select FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, "auto":
		return FormatAuto, nil
	case FormatJSON, FormatYAML, FormatCUE:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q (want json, yaml or cue)", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks a format by file extension. Unknown extensions and
// standard input are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	default:
		return FormatJSON
	}
}

// Decode parses data in the given format. FormatAuto means JSON.
func Decode(data []byte, format Format) (native.Value, error) {
	switch format {
	case FormatAuto, FormatJSON:
		return native.Decode(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatCUE:
		return decodeCUE(data, "input.cue")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// ReadFile reads and decodes the file at path, or standard input when path
// is "-". FormatAuto picks the format from the extension.
func ReadFile(path string, format Format) (native.Value, error) {
	if path == Stdin {
		return ReadReader(os.Stdin, format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if format == FormatAuto {
		format = FormatFromPath(path)
	}
	if format == FormatCUE {
		v, err := decodeCUE(data, filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return v, nil
	}

	v, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadReader reads r to the end and decodes it.
func ReadReader(r io.Reader, format Format) (native.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Decode(data, format)
}
