package reconciler

import (
	"fmt"
	"sort"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// checkIntegrity verifies that every checklist item resolves to a category
// and a reference in the target state. Items are checked in stage and
// sequence order so the errors read like the batch files.
func (r *reconciler) checkIntegrity(rctx *reconcileContext, state *catalogs.State) []error {
	var errs []error
	for _, item := range state.ListItems("") {
		cat, ok := state.Categories[item.CategoryID]
		if !ok {
			errs = append(errs, errors.NewDanglingReferenceError(item.WIR, item.ItemNumber, "category_id", item.CategoryID.String()))
		} else if cat.WIR != "" && catalogs.NormalizeCode(cat.WIR) != catalogs.NormalizeCode(item.WIR) {
			msg := fmt.Sprintf("checklist item %s/%s is filed under category %q of %s", item.WIR, item.ItemNumber, cat.Name, cat.WIR)
			rctx.result.Report.Warnings = append(rctx.result.Report.Warnings, msg)
		}
		if _, ok := state.References[item.ReferenceID]; !ok {
			errs = append(errs, errors.NewDanglingReferenceError(item.WIR, item.ItemNumber, "reference_id", item.ReferenceID.String()))
		}
	}
	return errs
}

// checkSequences verifies that checklist item sequences are unique within
// each stage and that stage sequences are unique across the set.
func (r *reconciler) checkSequences(state *catalogs.State) []error {
	var errs []error

	type slot struct {
		wir string
		seq int
	}
	taken := make(map[slot][]string)
	var order []slot
	for _, item := range state.ListItems("") {
		s := slot{wir: catalogs.NormalizeCode(item.WIR), seq: item.Sequence}
		if _, ok := taken[s]; !ok {
			order = append(order, s)
		}
		taken[s] = append(taken[s], item.ItemNumber)
	}
	for _, s := range order {
		if numbers := taken[s]; len(numbers) > 1 {
			sort.Strings(numbers)
			errs = append(errs, errors.NewDuplicateSequenceError(s.wir, s.seq, numbers))
		}
	}

	stages := make(map[int]string)
	for _, w := range state.ListWIRMasters() {
		if other, ok := stages[w.Sequence]; ok {
			errs = append(errs, errors.NewMalformedRecordError("", w.Kind().String(), w.BusinessKey(),
				fmt.Sprintf("sequence %d is already used by %s", w.Sequence, other)))
			continue
		}
		stages[w.Sequence] = w.BusinessKey()
	}
	return errs
}
