// Package table converts catalog values into rows for table output.
package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/differ"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// BatchesToTableData lists batches in precedence order.
func BatchesToTableData(batches []*batch.Batch) Data {
	headers := []string{"#", "NAME", "GENERATION", "SOURCE", "WIR", "CATEGORIES", "REFERENCES", "ITEMS"}

	rows := make([][]string, 0, len(batches))
	for i, b := range batches {
		counts := b.Counts()
		source := b.Source
		if source == "" {
			source = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			b.Name,
			strconv.Itoa(b.Generation),
			source,
			strconv.Itoa(counts[identity.KindWIRMaster]),
			strconv.Itoa(counts[identity.KindCategory]),
			strconv.Itoa(counts[identity.KindReference]),
			strconv.Itoa(counts[identity.KindChecklistItem]),
		})
	}

	return Data{
		Headers: headers,
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignRight,   // #
			AlignDefault, // NAME
			AlignRight,   // GENERATION
			AlignDefault, // SOURCE
			AlignRight,   // WIR
			AlignRight,   // CATEGORIES
			AlignRight,   // REFERENCES
			AlignRight,   // ITEMS
		},
	}
}

// AliasesToTableData lists the aliases a reconciliation produced.
func AliasesToTableData(aliases []reconciler.Alias) Data {
	headers := []string{"KIND", "BUSINESS KEY", "SUPERSEDED", "CANONICAL", "BATCH"}

	rows := make([][]string, 0, len(aliases))
	for _, a := range aliases {
		rows = append(rows, []string{
			a.Kind.String(),
			a.BusinessKey,
			a.From.String(),
			a.To.String(),
			a.ToBatch,
		})
	}
	return Data{Headers: headers, Rows: rows}
}

// StoredAliasesToTableData lists persisted aliases.
func StoredAliasesToTableData(aliases []store.AliasRecord) Data {
	headers := []string{"KIND", "BUSINESS KEY", "SUPERSEDED", "CANONICAL", "BATCH", "RECORDED"}

	rows := make([][]string, 0, len(aliases))
	for _, a := range aliases {
		rows = append(rows, []string{
			a.Kind.String(),
			a.BusinessKey,
			a.From.String(),
			a.To.String(),
			a.Batch,
			a.RecordedAt.Format(time.RFC3339),
		})
	}
	return Data{Headers: headers, Rows: rows}
}

// OverwritesToTableData lists same-id content collisions.
func OverwritesToTableData(overwrites []reconciler.Overwrite) Data {
	headers := []string{"KIND", "ID", "BUSINESS KEY", "FROM", "TO", "FIELDS"}

	rows := make([][]string, 0, len(overwrites))
	for _, o := range overwrites {
		rows = append(rows, []string{
			o.Kind.String(),
			o.ID.String(),
			o.Key,
			o.FromBatch,
			o.ToBatch,
			strings.Join(o.Fields, ", "),
		})
	}
	return Data{Headers: headers, Rows: rows}
}

// KindCountsToTableData lists per-kind record counts of a reconciled state.
func KindCountsToTableData(stats reconciler.ResultStatistics) Data {
	headers := []string{"KIND", "RECORDS"}

	rows := make([][]string, 0, len(identity.Kinds())+1)
	for _, kind := range identity.Kinds() {
		rows = append(rows, []string{kind.String(), strconv.Itoa(stats.KindCounts[kind])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(stats.RecordsKept)})

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignDefault, AlignRight},
	}
}

// ChangesetToTableData summarizes a changeset per kind.
func ChangesetToTableData(cs *differ.Changeset) Data {
	headers := []string{"KIND", "ADDED", "UPDATED", "UNCHANGED"}

	rows := make([][]string, 0, len(cs.Kinds)+1)
	for _, k := range cs.Kinds {
		rows = append(rows, []string{
			k.Kind.String(),
			strconv.Itoa(len(k.Added)),
			strconv.Itoa(len(k.Updated)),
			strconv.Itoa(k.Unchanged),
		})
	}
	rows = append(rows, []string{
		"total",
		strconv.Itoa(cs.Summary.Added),
		strconv.Itoa(cs.Summary.Updated),
		strconv.Itoa(cs.Summary.Unchanged),
	})

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignDefault, AlignRight, AlignRight, AlignRight},
	}
}
