package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"sort"
	"time"
)

// table is one collection of rows keyed by integer identity. It is not
// safe for concurrent use on its own; Store guards every table with a
// single RWMutex.
type table[T any] struct {
	seq  int64
	rows map[int64]T
	meta func(*T) (*int64, *domain.Audit)
}

func newTable[T any](meta func(*T) (*int64, *domain.Audit)) *table[T] {
	return &table[T]{rows: make(map[int64]T), meta: meta}
}

func (t *table[T]) insert(row *T, now time.Time) int64 {
	t.seq++
	id, audit := t.meta(row)
	*id = t.seq
	audit.CreatedAt, audit.UpdatedAt = now, now
	audit.IsDeleted, audit.DeletedAt = false, nil
	t.rows[t.seq] = *row
	return t.seq
}

func (t *table[T]) get(id int64) (*T, error) {
	row, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if _, audit := t.meta(&row); audit.IsDeleted {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

// find returns live rows matching keep, ordered by less (ID ascending when nil).
func (t *table[T]) find(keep func(*T) bool, less func(a, b *T) bool) []T {
	out := []T{}
	for _, row := range t.rows {
		r := row
		if _, audit := t.meta(&r); audit.IsDeleted {
			continue
		}
		if keep == nil || keep(&r) {
			out = append(out, r)
		}
	}
	if less == nil {
		less = func(a, b *T) bool {
			ida, _ := t.meta(a)
			idb, _ := t.meta(b)
			return *ida < *idb
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

// modify applies fn to a live row and refreshes UpdatedAt.
func (t *table[T]) modify(id int64, now time.Time, fn func(*T)) error {
	row, err := t.get(id)
	if err != nil {
		return err
	}
	fn(row)
	_, audit := t.meta(row)
	audit.UpdatedAt = now
	t.rows[id] = *row
	return nil
}

func (t *table[T]) softDelete(id int64, now time.Time) error {
	return t.modify(id, now, func(row *T) {
		_, audit := t.meta(row)
		audit.IsDeleted = true
		deletedAt := now
		audit.DeletedAt = &deletedAt
	})
}

func (t *table[T]) snapshot() *table[T] {
	c := &table[T]{seq: t.seq, rows: make(map[int64]T, len(t.rows)), meta: t.meta}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

func alive(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
