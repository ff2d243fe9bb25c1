package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/traitcalc/traitcalc/internal/utils"
)

// SaveTraitData writes the trait table to path in the format its extension names.
func SaveTraitData(path string, data TraitData) error {
	return encodeTable(TableTraits, path, data)
}

// SaveCostData writes the unit cost table to path in the format its extension names.
func SaveCostData(path string, data CostData) error {
	return encodeTable(TableCosts, path, data)
}

// encodeTable writes YAML for .yaml and .yml files and indented JSON otherwise.
func encodeTable(table, path string, in any) error {
	var (
		raw []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(in)
	default:
		raw, err = json.MarshalIndent(in, "", "  ")
		raw = append(raw, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding %s table: %w", table, err)
	}
	if err := utils.WriteFileAtomic(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s table: %w", table, err)
	}
	return nil
}
