// Package actuator emits search results.
//
// The actuator is the last stage of the pipeline: it converts the solver's
// domain result into the v1alpha1 wire types and writes the result file the
// validator and the browsing tools consume.
//
// # Architecture
//
//	Optimizer → solver.Result → Actuator → ComboFile (JSON) → validate / filter / inspect
//
// # Actuator Responsibilities
//
//  1. Conversion:
//     - Map solver.Composition to v1alpha1.Combination field by field
//     - Echo the search parameters, with required_units always present
//     - Mark partial results with truncated=true
//
//  2. Emission:
//     - Encode as indented JSON
//     - Replace the output file atomically (temporary file + rename)
//
//  3. Reading:
//     - Decode an existing result file for the validate, inspect and filter commands
//
// # Usage Example
//
//	act := actuator.NewActuator("combos.json")
//	file, err := act.Apply(ctx, result)
//	if err != nil {
//	    return err
//	}
//
//	again, err := actuator.ReadComboFile("combos.json")
package actuator
