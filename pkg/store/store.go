// Package store reads and writes configuration records on disk. The merge
// engine never touches storage itself; this package supplies its inputs and
// persists its outputs.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/pretty"
	yamlv4 "go.yaml.in/yaml/v4"
	"gopkg.in/yaml.v3"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

const (
	// jsonPrettyWidth is the max column width for single-line arrays in JSON output.
	jsonPrettyWidth = 80
	// recordFileMode keeps written records world-readable for other tooling.
	recordFileMode = 0o644
)

var (
	// ErrParse indicates a record could not be parsed as YAML or JSON
	ErrParse = errors.New("failed to parse configuration record")
	// ErrUnsupportedFileType indicates the store only handles JSON and YAML files
	ErrUnsupportedFileType = errors.New("store only supports JSON and YAML files")
)

// Parse decodes a configuration record from YAML or JSON bytes. YAML is tried
// first since JSON is a YAML subset; on failure the data is retried as JSON so
// the JSON error surfaces for JSON-looking input.
func Parse(data []byte) (*configtypes.ConfigurationRecord, error) {
	var record configtypes.ConfigurationRecord

	if err := yaml.Unmarshal(data, &record); err != nil {
		if jsonErr := json.Unmarshal(data, &record); jsonErr != nil {
			return nil, errors.Wrap(ErrParse, err.Error())
		}
	}

	return &record, nil
}

// Read loads a configuration record from path.
func Read(path string) (*configtypes.ConfigurationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	record, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	return record, nil
}

// Write persists a record to path, choosing the encoding by file extension:
// .yaml/.yml produce YAML, .json (and anything else JSON-like) produce pretty
// sorted JSON.
func Write(path string, record *configtypes.ConfigurationRecord) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = MarshalYAML(record)
	case ".json":
		data, err = MarshalJSON(record)
	default:
		return errors.Wrapf(ErrUnsupportedFileType, "path: %s", path)
	}

	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, recordFileMode); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}

// MarshalJSON renders a record as indented JSON with sorted keys and short
// arrays kept on single lines. SetEscapeHTML(false) preserves <, >, & in
// argument strings.
func MarshalJSON(record *configtypes.ConfigurationRecord) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(record); err != nil {
		return nil, errors.Wrap(err, "marshaling record to JSON")
	}

	opts := &pretty.Options{
		Width:    jsonPrettyWidth,
		Indent:   "  ",
		SortKeys: true,
	}

	result := pretty.PrettyOptions(buf.Bytes(), opts)

	return bytes.TrimSuffix(result, []byte("\n")), nil
}

// MarshalYAML renders a record as YAML.
func MarshalYAML(record *configtypes.ConfigurationRecord) ([]byte, error) {
	data, err := yamlv4.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling record to YAML")
	}

	return data, nil
}
