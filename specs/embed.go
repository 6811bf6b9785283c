// Package specs provides the embedded SAS-SAS exchange schema files.
//
// The embedded set contains the draft-04 JSON Schema documents for the
// SAS Implementation Record and the schemas it references:
//   - SasImplementationRecord.schema.json: the record document
//   - ContactInformation.schema.json: one contactable party
//   - FccInformation.schema.json: FCC certification information
//
// Usage:
//
//	data, err := specs.ReadFile(specs.SasImplementationRecord)
//	if err != nil {
//	    return err
//	}
package specs

import (
	"embed"
	"fmt"
	"io/fs"
)

// Embedded schema files.
//
//go:embed schemas/*.schema.json
var schemas embed.FS

// Canonical schema file names.
const (
	SasImplementationRecord = "SasImplementationRecord.schema.json"
	ContactInformation      = "ContactInformation.schema.json"
	FccInformation          = "FccInformation.schema.json"
)

// FS returns the embedded schema set as a file system rooted at the
// schema directory, suitable for a registry source.
func FS() fs.FS {
	sub, err := fs.Sub(schemas, "schemas")
	if err != nil {
		// The schemas directory is embedded at build time.
		panic(err)
	}
	return sub
}

// ListFiles returns the names of all embedded schema files.
func ListFiles() ([]string, error) {
	entries, err := schemas.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

// ReadFile reads an embedded schema file by name.
func ReadFile(filename string) ([]byte, error) {
	data, err := schemas.ReadFile("schemas/" + filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

// HasFile checks if a schema file exists in the embedded set.
func HasFile(filename string) bool {
	_, err := schemas.ReadFile("schemas/" + filename)
	return err == nil
}
