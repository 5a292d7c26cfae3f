package schemacfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// FileStore keeps one descriptor file per table in a directory, named
// <table>.yaml or <table>.json depending on the format.
type FileStore struct {
	dir       string
	format    string
	validator *validator
}

// NewFileStore creates a FileStore in dir using format (types.FormatYAML
// or types.FormatJSON; empty means YAML). The directory is created on the
// first Save.
func NewFileStore(dir, format string) (*FileStore, error) {
	if format == "" {
		format = types.FormatYAML
	}
	if format != types.FormatYAML && format != types.FormatJSON {
		return nil, fmt.Errorf("%w: %q", types.ErrDescriptorFormatUnknown, format)
	}
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, format: format, validator: v}, nil
}

// Path returns the descriptor file path for table.
func (s *FileStore) Path(table string) string {
	return filepath.Join(s.dir, table+"."+s.format)
}

// Load reads and validates the descriptor for table.
func (s *FileStore) Load(table string) (*types.Schema, error) {
	path := s.Path(table)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDescriptorNotFound
		}
		return nil, fmt.Errorf("stat descriptor: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(s.format)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading descriptor %s: %w", path, err)
	}

	var schema types.Schema
	if err := v.Unmarshal(&schema); err != nil {
		return nil, fmt.Errorf("decoding descriptor %s: %w", path, err)
	}
	if err := s.validator.validate(&schema); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", path, err)
	}
	if schema.Table != table {
		return nil, fmt.Errorf("descriptor %s: %w: describes table %q", path, ErrInvalidDescriptor, schema.Table)
	}
	return &schema, nil
}

// Save validates schema and writes its descriptor atomically.
func (s *FileStore) Save(schema *types.Schema) error {
	if err := s.validator.validate(schema); err != nil {
		return err
	}

	var data []byte
	var err error
	switch s.format {
	case types.FormatJSON:
		data, err = json.MarshalIndent(schema, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(schema)
	}
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating descriptor dir: %w", err)
	}
	return writeFileAtomic(s.Path(schema.Table), data)
}

// writeFileAtomic writes data using the temp-file, fsync, rename pattern.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".descriptor-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing descriptor: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
