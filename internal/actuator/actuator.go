package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/internal/utils"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

// Actuator writes search results to a file.
type Actuator struct {
	path string
}

// NewActuator returns an Actuator writing to path.
func NewActuator(path string) *Actuator {
	return &Actuator{path: path}
}

// Path returns the output file path.
func (a *Actuator) Path() string { return a.path }

// Apply converts result and writes it. The written file is returned.
func (a *Actuator) Apply(ctx context.Context, result *solver.Result) (*v1alpha1.ComboFile, error) {
	file := ToComboFile(result)
	if err := WriteComboFile(a.path, file); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Wrote result file",
		"path", a.path,
		"combinations", file.TotalCombinationsFound,
		"truncated", file.Truncated)
	return file, nil
}

// ToComboFile converts a solver result to its wire form.
func ToComboFile(result *solver.Result) *v1alpha1.ComboFile {
	required := append([]string{}, result.Spec.RequiredUnits...)
	file := &v1alpha1.ComboFile{
		SearchParameters: v1alpha1.SearchParameters{
			StartUnits:    result.Spec.StartUnits,
			MaxUnits:      result.Spec.MaxUnits,
			MaxCost:       result.Spec.MaxCost,
			RequiredUnits: required,
			MinRegions:    result.Spec.MinRegions,
		},
		TotalCombinationsFound: len(result.Compositions),
		Combinations:           make([]v1alpha1.Combination, 0, len(result.Compositions)),
		Truncated:              result.Truncated,
	}
	for _, c := range result.Compositions {
		file.Combinations = append(file.Combinations, ToCombination(c))
	}
	return file
}

// ToCombination converts one composition.
func ToCombination(c solver.Composition) v1alpha1.Combination {
	details := make(map[string]int, len(c.ActivatedDetails))
	for k, v := range c.ActivatedDetails {
		details[k] = v
	}
	return v1alpha1.Combination{
		Units:            append([]string{}, c.Units...),
		TraitCount:       c.TraitCount,
		ActivatedTraits:  append([]string{}, c.ActivatedTraits...),
		TotalCost:        c.TotalCost,
		ActivatedDetails: details,
	}
}

// EncodeComboFile writes file to w as indented JSON.
func EncodeComboFile(w io.Writer, file *v1alpha1.ComboFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding result file: %w", err)
	}
	return nil
}

// WriteComboFile writes file to path atomically.
func WriteComboFile(path string, file *v1alpha1.ComboFile) error {
	var buf bytes.Buffer
	if err := EncodeComboFile(&buf, file); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}
	return nil
}

// DecodeComboFile parses a result file.
func DecodeComboFile(data []byte) (*v1alpha1.ComboFile, error) {
	var file v1alpha1.ComboFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding result file: %w", err)
	}
	return &file, nil
}

// ReadComboFile reads and parses the result file at path.
func ReadComboFile(path string) (*v1alpha1.ComboFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	file, err := DecodeComboFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}
