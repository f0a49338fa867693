package reconciler

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// declaration is the surviving declaration of one id: the record from the
// latest batch that mentions it.
type declaration struct {
	record catalogs.Record
	batch  int
}

// keyIndex maps a business key to the ids that claim it, oldest batch first.
type keyIndex map[string][]identity.ID

// buildIndexes builds one business-key index per kind. Kinds are indexed
// concurrently; the declarations are only read.
func buildIndexes(ctx context.Context, decls map[identity.ID]declaration) (map[identity.Kind]keyIndex, error) {
	kinds := identity.Kinds()
	built := make([]keyIndex, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			built[i] = indexKind(kind, decls)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indexes := make(map[identity.Kind]keyIndex, len(kinds))
	for i, kind := range kinds {
		indexes[kind] = built[i]
	}
	return indexes, nil
}

func indexKind(kind identity.Kind, decls map[identity.ID]declaration) keyIndex {
	idx := make(keyIndex)
	for id, d := range decls {
		if d.record.Kind() != kind {
			continue
		}
		key := d.record.BusinessKey()
		idx[key] = append(idx[key], id)
	}

	// Batch order decides precedence, so the slice order must not depend
	// on map iteration.
	for _, ids := range idx {
		sort.Slice(ids, func(i, j int) bool {
			bi, bj := decls[ids[i]].batch, decls[ids[j]].batch
			if bi != bj {
				return bi < bj
			}
			return ids[i].String() < ids[j].String()
		})
	}
	return idx
}

// sortedKeys returns the keys of an index in order.
func (idx keyIndex) sortedKeys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
