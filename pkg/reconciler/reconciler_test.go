package reconciler_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
)

var (
	c1 = identity.MustNew(identity.KindCategory, 0, 1)
	c2 = identity.MustNew(identity.KindCategory, 1, 1)
	r1 = identity.MustNew(identity.KindReference, 2, 1)
	i1 = identity.MustNew(identity.KindChecklistItem, 1, 1)
	i2 = identity.MustNew(identity.KindChecklistItem, 1, 2)
)

func wir1() catalogs.WIRMaster {
	return catalogs.WIRMaster{
		ID:          identity.MustNew(identity.KindWIRMaster, 0, 1),
		Code:        "WIR-1",
		Name:        "Material Receiving & Verification",
		Description: "Verify all materials meet specifications",
		Sequence:    1,
		Discipline:  catalogs.DisciplineBoth,
		Phase:       "Material",
		Active:      true,
	}
}

func newItem(id identity.ID, number string, seq int, category, reference identity.ID) catalogs.ChecklistItem {
	return catalogs.ChecklistItem{
		ID:          id,
		ItemNumber:  number,
		WIR:         "WIR-1",
		Description: "Check " + number,
		CategoryID:  category,
		ReferenceID: reference,
		Sequence:    seq,
		Active:      true,
	}
}

func reconcile(t *testing.T, batches ...*batch.Batch) (*reconciler.Result, error) {
	t.Helper()
	r, err := reconciler.New(reconciler.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	return r.Reconcile(context.Background(), batches)
}

func TestReconcile_GeneralSupersededByLaterBatch(t *testing.T) {
	a := &batch.Batch{
		Name:       "A",
		Categories: []catalogs.Category{{ID: c1, Name: "General"}},
	}
	b := &batch.Batch{
		Name:       "B",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c2, Name: "General"}},
		References: []catalogs.Reference{{ID: r1, Name: "Material Approval"}},
		Items:      []catalogs.ChecklistItem{newItem(i1, "A1", 1, c2, r1)},
	}

	result, err := reconcile(t, a, b)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	state := result.State
	require.Len(t, state.Categories, 1)
	assert.Equal(t, "General", state.Categories[c2].Name)
	_, ok := state.Categories[c1]
	assert.False(t, ok, "superseded id must be absent")

	to, superseded := result.Aliases.Resolve(c1)
	assert.True(t, superseded)
	assert.Equal(t, c2, to)

	require.Len(t, result.Report.Aliases, 1)
	alias := result.Report.Aliases[0]
	assert.Equal(t, c1, alias.From)
	assert.Equal(t, c2, alias.To)
	assert.Equal(t, identity.KindCategory, alias.Kind)
	assert.Equal(t, "A", alias.FromBatch)
	assert.Equal(t, "B", alias.ToBatch)
}

func TestReconcile_ItemFollowsCanonicalCategory(t *testing.T) {
	a := &batch.Batch{
		Name:       "legacy",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c1, Name: "General"}},
		References: []catalogs.Reference{{ID: r1, Name: "Material Approval"}},
		Items:      []catalogs.ChecklistItem{newItem(i1, "A1", 1, c1, r1)},
	}
	b := &batch.Batch{
		Name:       "complete",
		Categories: []catalogs.Category{{ID: c2, Name: "  GENERAL "}},
	}

	result, err := reconcile(t, a, b)
	require.NoError(t, err)

	item := result.State.Items[i1]
	assert.Equal(t, c2, item.CategoryID)
	assert.Equal(t, r1, item.ReferenceID)
	assert.Equal(t, 1, result.Metadata.Stats.FKRewrites)

	// the later batch's content wins along with its id
	assert.Equal(t, "  GENERAL ", result.State.Categories[c2].Name)
}

func TestReconcile_PrecedenceFollowsInputOrder(t *testing.T) {
	a := &batch.Batch{Name: "A", Categories: []catalogs.Category{{ID: c1, Name: "General"}}}
	b := &batch.Batch{Name: "B", Categories: []catalogs.Category{{ID: c2, Name: "General"}}}

	result, err := reconcile(t, b, a)
	require.NoError(t, err)
	require.Len(t, result.State.Categories, 1)
	_, ok := result.State.Categories[c1]
	assert.True(t, ok)
}

func TestReconcile_DanglingReference(t *testing.T) {
	missing := identity.MustNew(identity.KindReference, 2, 99)
	b := &batch.Batch{
		Name:       "B",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c2, WIR: "WIR-1", Name: "Material Inspection"}},
		Items:      []catalogs.ChecklistItem{newItem(i1, "A1", 1, c2, missing)},
	}

	result, err := reconcile(t, b)
	require.Error(t, err)
	assert.True(t, errors.IsDanglingReference(err))
	assert.Contains(t, err.Error(), "WIR-1/A1")
	assert.Contains(t, err.Error(), missing.String())

	require.NotNil(t, result)
	assert.False(t, result.IsSuccess())
	assert.Nil(t, result.State)

	var dre *errors.DanglingReferenceError
	require.True(t, errors.As(err, &dre))
	assert.Equal(t, "WIR-1", dre.WIRCode)
	assert.Equal(t, "A1", dre.ItemNumber)
	assert.Equal(t, "reference_id", dre.Field)
}

func TestReconcile_CollectsEveryDanglingReference(t *testing.T) {
	b := &batch.Batch{
		Name:       "B",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Items: []catalogs.ChecklistItem{
			newItem(i1, "A1", 1, c1, r1),
			newItem(i2, "A2", 2, c2, r1),
		},
	}
	result, err := reconcile(t, b)
	require.Error(t, err)
	assert.Len(t, result.Errors, 4)
	require.Len(t, result.Report.Errors, 4)
	assert.Contains(t, result.Report.Errors[0], "WIR-1/A1")
	assert.Nil(t, result.State)
}

func TestReconcile_DuplicateSequence(t *testing.T) {
	b := &batch.Batch{
		Name:       "B",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c2, WIR: "WIR-1", Name: "Material Inspection"}},
		References: []catalogs.Reference{{ID: r1, Name: "Material Approval"}},
		Items: []catalogs.ChecklistItem{
			newItem(i2, "A2", 7, c2, r1),
			newItem(i1, "A1", 7, c2, r1),
		},
	}

	_, err := reconcile(t, b)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateSequence(err))

	var dse *errors.DuplicateSequenceError
	require.True(t, errors.As(err, &dse))
	assert.Equal(t, "WIR-1", dse.WIRCode)
	assert.Equal(t, 7, dse.Sequence)
	assert.Equal(t, []string{"A1", "A2"}, dse.ItemNumbers)
}

func TestReconcile_DuplicateSequenceAcrossBatches(t *testing.T) {
	base := &batch.Batch{
		Name:       "A",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c2, WIR: "WIR-1", Name: "Material Inspection"}},
		References: []catalogs.Reference{{ID: r1, Name: "Material Approval"}},
		Items:      []catalogs.ChecklistItem{newItem(i1, "A1", 1, c2, r1)},
	}
	next := &batch.Batch{
		Name:  "B",
		Items: []catalogs.ChecklistItem{newItem(i2, "A2", 1, c2, r1)},
	}

	_, err := reconcile(t, base, next)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateSequence(err))
}

func TestReconcile_SameIDContentCollision(t *testing.T) {
	old := newItem(i1, "A1", 1, c2, r1)
	updated := old
	updated.Description = "Is there material approval for received item?"

	a := &batch.Batch{
		Name:       "A",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c2, WIR: "WIR-1", Name: "Material Inspection"}},
		References: []catalogs.Reference{{ID: r1, Name: "Material Approval"}},
		Items:      []catalogs.ChecklistItem{old},
	}
	b := &batch.Batch{Name: "B", Items: []catalogs.ChecklistItem{updated}}

	result, err := reconcile(t, a, b)
	require.NoError(t, err)
	assert.Equal(t, updated.Description, result.State.Items[i1].Description)
	assert.Empty(t, result.Report.Aliases)

	require.Len(t, result.Report.Overwrites, 1)
	ow := result.Report.Overwrites[0]
	assert.Equal(t, i1, ow.ID)
	assert.Equal(t, "A", ow.FromBatch)
	assert.Equal(t, "B", ow.ToBatch)
	assert.Equal(t, []string{"description"}, ow.Fields)
	assert.True(t, result.HasCollisions())
}

func TestReconcile_IdenticalRedeclarationIsNotAnOverwrite(t *testing.T) {
	a := &batch.Batch{Name: "A", References: []catalogs.Reference{{ID: r1, Name: "General"}}}
	b := &batch.Batch{Name: "B", References: []catalogs.Reference{{ID: r1, Name: "General"}}}

	result, err := reconcile(t, a, b)
	require.NoError(t, err)
	assert.Empty(t, result.Report.Overwrites)
	assert.False(t, result.HasCollisions())
	assert.Equal(t, 2, result.Metadata.Stats.RecordsRead)
	assert.Equal(t, 1, result.Metadata.Stats.RecordsKept)
}

func TestReconcile_BusinessKeyChangeUnderStableID(t *testing.T) {
	a := &batch.Batch{Name: "A", References: []catalogs.Reference{{ID: r1, Name: "General"}}}
	b := &batch.Batch{Name: "B", References: []catalogs.Reference{{ID: r1, Name: "General Notes"}}}

	result, err := reconcile(t, a, b)
	require.NoError(t, err)
	require.Len(t, result.Report.Warnings, 1)
	assert.Contains(t, result.Report.Warnings[0], "changes business key")

	strict, err := reconciler.New(reconciler.WithStrict(true), reconciler.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	_, err = strict.Reconcile(context.Background(), []*batch.Batch{a, b})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedRecord(err))
}

func TestReconcile_WarnsWhenNoStagesAreKnown(t *testing.T) {
	b := &batch.Batch{Name: "B", Categories: []catalogs.Category{{ID: c1, WIR: "WIR-9", Name: "Documents"}}}

	result, err := reconcile(t, b)
	require.NoError(t, err)
	require.Len(t, result.Report.Warnings, 1)
	assert.Contains(t, result.Report.Warnings[0], "no WIR masters")

	r, err := reconciler.New(reconciler.WithKnownWIRCodes("WIR-9"), reconciler.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	result, err = r.Reconcile(context.Background(), []*batch.Batch{b})
	require.NoError(t, err)
	assert.Empty(t, result.Report.Warnings)
}

func TestReconcile_NonConformantID(t *testing.T) {
	odd := identity.MustParse("30000001-0000-0000-00ab-000000000001")
	b := &batch.Batch{Name: "B", References: []catalogs.Reference{{ID: odd, Name: "General"}}}

	result, err := reconcile(t, b)
	require.NoError(t, err)
	require.Len(t, result.Report.Warnings, 1)
	assert.Contains(t, result.Report.Warnings[0], "does not follow")
}

func TestReconcile_MalformedRecord(t *testing.T) {
	b := &batch.Batch{
		Name:       "B",
		References: []catalogs.Reference{{ID: r1, Name: "  "}},
	}
	result, err := reconcile(t, b)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedRecord(err))
	assert.True(t, errors.IsAuthoringError(err))
	assert.False(t, result.IsSuccess())
	assert.Contains(t, result.Summary(), "failed")
}

func TestReconcile_UnknownStage(t *testing.T) {
	item := newItem(identity.MustNew(identity.KindChecklistItem, 0, 1), "A1", 1, c1, r1)
	item.WIR = "WIR-7"
	b := &batch.Batch{
		Name:       "B",
		WIRMasters: []catalogs.WIRMaster{wir1()},
		Categories: []catalogs.Category{{ID: c1, Name: "General"}},
		References: []catalogs.Reference{{ID: r1, Name: "General"}},
		Items:      []catalogs.ChecklistItem{item},
	}

	_, err := reconcile(t, b)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedRecord(err))
	assert.Contains(t, err.Error(), "wir WIR-7 does not match any WIR master")

	r, err := reconciler.New(reconciler.WithKnownWIRCodes("WIR-7"), reconciler.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	_, err = r.Reconcile(context.Background(), []*batch.Batch{b})
	assert.NoError(t, err)
}

func TestReconcile_InvalidInput(t *testing.T) {
	_, err := reconcile(t)
	assert.True(t, errors.IsValidationError(err))

	a := &batch.Batch{Name: "A"}
	_, err = reconcile(t, a, a)
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(reconciler.WithKnownWIRCodes("stage one"))
	assert.Error(t, err)

	_, err = reconciler.New(reconciler.WithLogger(nil))
	assert.Error(t, err)
}

func TestReconcile_LogsFromContext(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Reconcile(ctx, []*batch.Batch{{Name: "A", References: []catalogs.Reference{{ID: r1, Name: "General"}}}})
	require.NoError(t, err)
	tl.AssertContains(t, "Reconciled seed batches")
}

func TestReconcile_TagsValidationLogsWithBatch(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Reconcile(ctx, []*batch.Batch{
		{Name: "A", References: []catalogs.Reference{{ID: r1, Name: "General"}}},
		{Name: "B", References: []catalogs.Reference{{ID: r1, Name: "General"}, {ID: r1, Name: "Drawings"}}},
	})
	require.Error(t, err)

	var valid, invalid bool
	for _, line := range tl.Lines() {
		if strings.Contains(line, "Seed batch is valid") && strings.Contains(line, `"batch":"A"`) {
			valid = true
		}
		if strings.Contains(line, "Seed batch failed validation") && strings.Contains(line, `"batch":"B"`) {
			invalid = true
		}
	}
	assert.True(t, valid, tl.Output())
	assert.True(t, invalid, tl.Output())
}

func TestReconcile_EmbeddedBatches(t *testing.T) {
	batches, err := batch.Embedded()
	require.NoError(t, err)

	result, err := reconcile(t, batches...)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	state := result.State
	assert.Equal(t, []string{"legacy-flat", "complete", "finishing-final"}, result.Metadata.Batches)
	assert.Equal(t, 331, result.Metadata.Stats.RecordsRead)
	assert.Equal(t, 288, state.Len())
	assert.Len(t, state.WIRMasters, 6)
	assert.Len(t, state.Categories, 54)
	assert.Len(t, state.References, 53)
	assert.Len(t, state.Items, 175)
	assert.Len(t, result.Report.Aliases, 37)
	assert.Empty(t, result.Report.Overwrites)
	assert.Empty(t, result.Report.Warnings)

	perStage := map[string]int{"WIR-1": 30, "WIR-2": 10, "WIR-3": 15, "WIR-4": 28, "WIR-5": 38, "WIR-6": 54}
	for wir, n := range perStage {
		assert.Len(t, state.ListItems(wir), n, wir)
	}

	// legacy references collapse onto their complete counterparts
	general, ok := result.Aliases.Resolve(identity.MustParse("30000001-0000-0000-0000-000000000004"))
	require.True(t, ok)
	assert.Equal(t, "30000001-0000-0000-0002-000000000001", general.String())

	// legacy HVAC items now point at the stage-namespaced category
	hvac := state.Items[identity.MustParse("20000001-0000-0000-0002-000000000001")]
	assert.Equal(t, "40000001-0000-0000-0002-000000000001", hvac.CategoryID.String())

	// finishing items authored against legacy ids follow their successors
	painting := state.Items[identity.MustParse("20000001-0000-0000-0005-000000000002")]
	assert.Equal(t, "40000001-0000-0000-0005-000000000001", painting.CategoryID.String())
	assert.Equal(t, "30000001-0000-0000-0002-000000000015", painting.ReferenceID.String())
	assert.False(t, state.Has(identity.MustParse("40000001-0000-0000-0000-000000000024")))

	assertBusinessKeysUnique(t, state)
	assertNoDanglingReferences(t, state)
	assertSequencesUnique(t, state)
}

func TestReconcile_Deterministic(t *testing.T) {
	batches, err := batch.Embedded()
	require.NoError(t, err)

	first, err := reconcile(t, batches...)
	require.NoError(t, err)
	second, err := reconcile(t, batches...)
	require.NoError(t, err)

	assert.Equal(t, first.Report.Aliases, second.Report.Aliases)
	assert.Equal(t, first.State.All(), second.State.All())
}

func assertBusinessKeysUnique(t *testing.T, state *catalogs.State) {
	t.Helper()
	seen := make(map[string]identity.ID)
	for _, r := range state.All() {
		key := r.Kind().String() + "/" + r.BusinessKey()
		if other, dup := seen[key]; dup {
			t.Errorf("business key %s shared by %s and %s", key, other, r.RecordID())
		}
		seen[key] = r.RecordID()
	}
}

func assertNoDanglingReferences(t *testing.T, state *catalogs.State) {
	t.Helper()
	for _, item := range state.Items {
		assert.Contains(t, state.Categories, item.CategoryID, item.BusinessKey())
		assert.Contains(t, state.References, item.ReferenceID, item.BusinessKey())
	}
}

func assertSequencesUnique(t *testing.T, state *catalogs.State) {
	t.Helper()
	seen := make(map[string]bool)
	for _, item := range state.Items {
		slot := fmt.Sprintf("%s/%d", catalogs.NormalizeCode(item.WIR), item.Sequence)
		assert.False(t, seen[slot], "duplicate sequence %s", slot)
		seen[slot] = true
	}
}
