package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTraitData reads the trait table from path.
func LoadTraitData(path string) (TraitData, error) {
	var data TraitData
	if err := decodeTable(TableTraits, path, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &ConfigurationError{Table: TableTraits, Reason: "table is empty or not a mapping"}
	}
	return data, nil
}

// LoadCostData reads the unit cost table from path.
func LoadCostData(path string) (CostData, error) {
	var data CostData
	if err := decodeTable(TableCosts, path, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &ConfigurationError{Table: TableCosts, Reason: "table is empty or not a mapping"}
	}
	return data, nil
}

// LoadReferenceTables reads both tables. The first failure is returned.
func LoadReferenceTables(traitsPath, costsPath string) (*ReferenceTables, error) {
	traits, err := LoadTraitData(traitsPath)
	if err != nil {
		return nil, err
	}
	costs, err := LoadCostData(costsPath)
	if err != nil {
		return nil, err
	}
	return &ReferenceTables{Traits: traits, Costs: costs}, nil
}

// decodeTable decodes a JSON or YAML file into out. Files without a known
// extension are decoded as YAML, which also accepts JSON documents.
func decodeTable(table, path string, out any) error {
	if path == "" {
		return &ConfigurationError{Table: table, Reason: "no file path given"}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		reason := "cannot read " + path
		if errors.Is(err, fs.ErrNotExist) {
			reason = "file not found: " + path
		}
		return &ConfigurationError{Table: table, Reason: reason, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, out)
	default:
		err = yaml.Unmarshal(raw, out)
	}
	if err != nil {
		return &ConfigurationError{Table: table, Reason: "malformed mapping in " + path, Err: err}
	}
	return nil
}
