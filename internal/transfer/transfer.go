// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package transfer reads and writes plaintext credential exports in JSON,
// CSV or YAML, optionally Zstandard-compressed.
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"

	"github.com/toeirei/keyvault/internal/model"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// DocumentVersion is written into JSON and YAML exports.
const DocumentVersion = 1

// CompressedSuffix marks files that are Zstandard-compressed.
const CompressedSuffix = ".zst"

var (
	// ErrUnknownFormat is returned for format names other than json, csv
	// and yaml.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrInvalidDocument is returned when an import file cannot be parsed.
	ErrInvalidDocument = errors.New("invalid export document")
)

var csvHeader = []string{"service", "username", "secret"}

// Document is the JSON and YAML export layout.
type Document struct {
	Version     int                     `json:"version" yaml:"version"`
	Credentials []model.PlainCredential `json:"credentials" yaml:"credentials"`
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DetectFormat guesses the format from the file extension, ignoring a
// trailing .zst. Unknown extensions select JSON.
func DetectFormat(path string) Format {
	base := strings.TrimSuffix(strings.ToLower(path), CompressedSuffix)
	switch filepath.Ext(base) {
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// IsCompressed reports whether path names a Zstandard-compressed file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedSuffix)
}

// Encode writes creds to w in format f.
func Encode(w io.Writer, f Format, creds []model.PlainCredential) error {
	if creds == nil {
		creds = []model.PlainCredential{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Document{Version: DocumentVersion, Credentials: creds})
	case FormatYAML:
		data, err := yaml.Marshal(Document{Version: DocumentVersion, Credentials: creds})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, c := range creds {
			if err := cw.Write([]string{c.Service, c.Username, c.Secret}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Decode reads credentials in format f from r.
func Decode(r io.Reader, f Format) ([]model.PlainCredential, error) {
	switch f {
	case FormatJSON:
		var doc Document
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return doc.Credentials, nil
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return doc.Credentials, nil
	case FormatCSV:
		return decodeCSV(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

func decodeCSV(r io.Reader) ([]model.PlainCredential, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for i, h := range csvHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != h {
			return nil, fmt.Errorf("%w: csv header must be %s", ErrInvalidDocument, strings.Join(csvHeader, ","))
		}
	}

	var out []model.PlainCredential
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		out = append(out, model.PlainCredential{Service: rec[0], Username: rec[1], Secret: rec[2]})
	}
	return out, nil
}

// WriteFile writes creds to path with mode 0600, compressing with zstd when
// path ends in .zst.
func WriteFile(path string, f Format, creds []model.PlainCredential) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	// O_CREATE keeps the mode of a pre-existing file.
	if err := file.Chmod(0o600); err != nil {
		return err
	}

	if !IsCompressed(path) {
		return Encode(file, f, creds)
	}

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	if err := Encode(zw, f, creds); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// ReadFile reads credentials from path, decompressing .zst files.
func ReadFile(path string, f Format) ([]model.PlainCredential, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if !IsCompressed(path) {
		return Decode(file, f)
	}

	zr, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()
	return Decode(zr, f)
}
