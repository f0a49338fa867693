package catalogs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

func wir2() WIRMaster {
	return WIRMaster{
		ID:          identity.MustNew(identity.KindWIRMaster, 0, 2),
		Code:        "WIR-2",
		Name:        "MEP Installation & Testing",
		Description: "Install and test all MEP systems",
		Sequence:    2,
		Discipline:  DisciplineMEP,
		Phase:       "Installation",
		Active:      true,
	}
}

func item() ChecklistItem {
	return ChecklistItem{
		ID:          identity.MustNew(identity.KindChecklistItem, 2, 1),
		ItemNumber:  "A1",
		WIR:         "WIR-2",
		Description: "Is the duct installed as per approved drawing?",
		CategoryID:  identity.MustNew(identity.KindCategory, 2, 1),
		ReferenceID: identity.MustNew(identity.KindReference, 2, 1),
		Sequence:    1,
		Active:      true,
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"General", "general"},
		{"  General   Requirements ", "general requirements"},
		{"Leak\tTest of  Drainage", "leak test of drainage"},
		{"ＷＩＲ Ｆｕｌｌｗｉｄｔｈ", "wir fullwidth"},
		{"STRASSE", "strasse"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "WIR-2", NormalizeCode(" wir-2 "))
	assert.Equal(t, "A10", NormalizeCode("a 10"))
}

func TestStagePrefix(t *testing.T) {
	assert.Equal(t, "WIR-2", StagePrefix("WIR-2: Leak Test"))
	assert.Equal(t, "WIR-5", StagePrefix("wir-05 - Painting"))
	assert.Equal(t, "", StagePrefix("General"))
	assert.Equal(t, "Leak Test", StripStagePrefix("WIR-2: Leak Test"))
	assert.Equal(t, "General", StripStagePrefix("General"))

	n, ok := StageNumber("WIR-4")
	require.True(t, ok)
	assert.Equal(t, 4, n)
	_, ok = StageNumber("STAGE-4")
	assert.False(t, ok)
}

func TestBusinessKeys(t *testing.T) {
	prefixed := Category{ID: identity.MustNew(identity.KindCategory, 2, 3), WIR: "WIR-2", Name: "WIR-2: Leak Test"}
	plain := Category{ID: identity.MustNew(identity.KindCategory, 0, 4), WIR: "wir-2", Name: "leak  test"}
	other := Category{ID: identity.MustNew(identity.KindCategory, 3, 4), WIR: "WIR-3", Name: "Leak Test"}

	assert.Equal(t, prefixed.BusinessKey(), plain.BusinessKey())
	assert.NotEqual(t, prefixed.BusinessKey(), other.BusinessKey())

	ref := Reference{Name: "Approved  Drawing"}
	assert.Equal(t, "approved drawing", ref.BusinessKey())

	it := item()
	it.ItemNumber = "a1"
	assert.Equal(t, "WIR-2|A1", it.BusinessKey())
	assert.Equal(t, "WIR-2", wir2().BusinessKey())
}

func TestSameContent(t *testing.T) {
	a := item()
	b := a
	b.ID = identity.MustNew(identity.KindChecklistItem, 2, 99)
	b.CreatedAt = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameContent(a, b), "ids and timestamps are not content")
	assert.False(t, SameID(a, b))

	b.Description = "changed"
	assert.False(t, SameContent(a, b))
	assert.Equal(t, []string{"description"}, ChangedFields(a, b))

	assert.False(t, SameContent(a, Reference{Name: a.Description}))
}

func TestWithCreated(t *testing.T) {
	ts := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	r := WithCreated(Reference{Name: "General"}, ts)
	assert.Equal(t, ts, r.Created())

	earlier := ts.Add(-time.Hour)
	r = WithCreated(Reference{Name: "General", CreatedAt: earlier}, ts)
	assert.Equal(t, earlier, r.Created())
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator("WIR-1", "WIR-2")
	assert.NoError(t, v.Validate("test", wir2()))
	assert.NoError(t, v.Validate("test", item()))
	assert.NoError(t, v.Validate("test", Category{ID: identity.MustNew(identity.KindCategory, 0, 2), Name: "General"}))
	assert.NoError(t, v.Validate("test", Reference{ID: identity.MustNew(identity.KindReference, 0, 1), Name: "Approved Drawing"}))
}

func TestValidator_Problems(t *testing.T) {
	v := NewValidator("WIR-1", "WIR-2")

	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "empty name",
			record: Reference{ID: identity.MustNew(identity.KindReference, 0, 1)},
			want:   "name is required",
		},
		{
			name:   "nil id",
			record: Reference{Name: "General"},
			want:   "id is required",
		},
		{
			name:   "wrong prefix",
			record: Reference{ID: identity.MustNew(identity.KindCategory, 0, 1), Name: "General"},
			want:   "does not carry the reference prefix",
		},
		{
			name: "non-positive sequence",
			record: func() Record {
				i := item()
				i.Sequence = 0
				return i
			}(),
			want: "sequence must be greater than 0",
		},
		{
			name: "unknown stage",
			record: func() Record {
				i := item()
				i.ID = identity.MustNew(identity.KindChecklistItem, 0, 1)
				i.WIR = "WIR-9"
				return i
			}(),
			want: "wir WIR-9 does not match any WIR master",
		},
		{
			name: "empty description",
			record: func() Record {
				i := item()
				i.Description = ""
				return i
			}(),
			want: "description is required",
		},
		{
			name: "dangling kind on fk",
			record: func() Record {
				i := item()
				i.ReferenceID = identity.MustNew(identity.KindCategory, 0, 1)
				return i
			}(),
			want: "is not a reference id",
		},
		{
			name: "stage namespace mismatch",
			record: func() Record {
				i := item()
				i.ID = identity.MustNew(identity.KindChecklistItem, 1, 1)
				return i
			}(),
			want: "id namespace 0001 does not match stage WIR-2",
		},
		{
			name: "prefix conflicts with fk",
			record: Category{
				ID:   identity.MustNew(identity.KindCategory, 2, 1),
				WIR:  "WIR-2",
				Name: "WIR-1: Material Inspection",
			},
			want: "name prefix WIR-1 conflicts with wir WIR-2",
		},
		{
			name:   "prefix without fk",
			record: Category{ID: identity.MustNew(identity.KindCategory, 0, 1), Name: "WIR-2: Leak Test"},
			want:   "but wir is empty",
		},
		{
			name: "bad discipline",
			record: func() Record {
				w := wir2()
				w.Discipline = "Plumbing"
				return w
			}(),
			want: `discipline "Plumbing" is not one of`,
		},
		{
			name: "bad code",
			record: func() Record {
				w := wir2()
				w.Code = "STAGE-2"
				return w
			}(),
			want: `code "STAGE-2" is not a WIR code`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate("0001_test", tt.record)
			require.Error(t, err)
			assert.True(t, errors.IsMalformedRecord(err))

			var mre *errors.MalformedRecordError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, "0001_test", mre.Batch)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidator_NoKnownCodes(t *testing.T) {
	v := NewValidator()
	i := item()
	i.ID = identity.MustNew(identity.KindChecklistItem, 0, 7)
	i.WIR = "WIR-7"
	assert.NoError(t, v.Validate("test", i))
}

func TestState(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Put(wir2()))
	require.NoError(t, s.Put(item()))
	require.NoError(t, s.Put(Category{ID: identity.MustNew(identity.KindCategory, 2, 1), WIR: "WIR-2", Name: "Installation of HVAC Duct"}))
	require.NoError(t, s.Put(Reference{ID: identity.MustNew(identity.KindReference, 2, 1), Name: "Approved Drawing"}))

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 1, s.Count(identity.KindCategory))
	assert.True(t, s.Has(item().ID))
	assert.False(t, s.Has(identity.MustNew(identity.KindReference, 0, 1)))

	r, ok := s.Get(item().CategoryID)
	require.True(t, ok)
	assert.Equal(t, identity.KindCategory, r.Kind())

	all := s.All()
	require.Len(t, all, 4)
	assert.Equal(t, identity.KindWIRMaster, all[0].Kind())
	assert.Equal(t, identity.KindChecklistItem, all[3].Kind())
	assert.Equal(t, []string{"WIR-2"}, s.WIRCodes())

	clone := s.Clone()
	delete(clone.Items, item().ID)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 3, clone.Len())
}

func TestState_ListItems(t *testing.T) {
	s := NewState()
	second := item()
	second.ID = identity.MustNew(identity.KindChecklistItem, 2, 2)
	second.ItemNumber = "A2"
	second.Sequence = 2
	first := item()
	other := item()
	other.ID = identity.MustNew(identity.KindChecklistItem, 1, 1)
	other.WIR = "WIR-1"
	other.Sequence = 5

	for _, r := range []Record{second, first, other} {
		require.NoError(t, s.Put(r))
	}

	items := s.ListItems("wir-2")
	require.Len(t, items, 2)
	assert.Equal(t, "A1", items[0].ItemNumber)
	assert.Equal(t, "A2", items[1].ItemNumber)

	all := s.ListItems("")
	require.Len(t, all, 3)
	assert.Equal(t, "WIR-1", all[0].WIR)
}
