package repository

import (
	"context"
	"errors"

	"spacrm-backend/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Patch maps column names to new values. Columns that are absent are left
// untouched, which is different from setting them to their zero value.
type Patch map[string]any

// Options specializes a Repository for one entity kind.
type Options[T any] struct {
	// Entity is used in not-found errors.
	Entity string
	// Key returns the primary key, used for reloads and de-duplication.
	Key func(*T) uuid.UUID
	// Preload attaches the eager-loaded relationships.
	Preload func(*gorm.DB) *gorm.DB
	// Prune removes soft-deleted children after load and clears references
	// that would point at them.
	Prune func(*T)
	// Order defaults to "created_at DESC".
	Order string
}

// Repository implements soft-delete aware CRUD once for every entity that
// carries a gorm.DeletedAt column.
type Repository[T any] struct {
	db        *gorm.DB
	opts      Options[T]
	hasActive bool
}

func New[T any](db *gorm.DB, opts Options[T]) *Repository[T] {
	if opts.Order == "" {
		opts.Order = "created_at DESC"
	}
	r := &Repository[T]{db: db, opts: opts}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err == nil {
		r.hasActive = stmt.Schema.LookUpField("is_active") != nil
	}
	return r
}

// WithTx returns a copy bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx, opts: r.opts, hasActive: r.hasActive}
}

func (r *Repository[T]) Entity() string { return r.opts.Entity }

func (r *Repository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	if r.opts.Preload != nil {
		q = r.opts.Preload(q)
	}
	return q
}

func (r *Repository[T]) prune(item *T) {
	if r.opts.Prune != nil {
		r.opts.Prune(item)
	}
}

// List returns live rows only.
func (r *Repository[T]) List(ctx context.Context, skip, limit int) ([]T, error) {
	q := r.query(ctx).Order(r.opts.Order)
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := rows[:0]
	for i := range rows {
		if r.opts.Key != nil {
			k := r.opts.Key(&rows[i])
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		r.prune(&rows[i])
		out = append(out, rows[i])
	}
	return out, nil
}

func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&total).Error
	return total, err
}

func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var item T
	if err := r.query(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound(r.opts.Entity)
		}
		return nil, err
	}
	r.prune(&item)
	return &item, nil
}

func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update applies patch and returns the reloaded entity.
func (r *Repository[T]) Update(ctx context.Context, item *T, patch Patch) (*T, error) {
	if len(patch) > 0 {
		res := r.db.WithContext(ctx).Model(item).Omit(clause.Associations).Updates(map[string]any(patch))
		if res.Error != nil {
			return nil, res.Error
		}
	}
	if r.opts.Key == nil {
		return item, nil
	}
	return r.Get(ctx, r.opts.Key(item))
}

// Delete soft-deletes item. Entities with an is_active column are also
// deactivated. Deleting a row that is already deleted is a not-found.
func (r *Repository[T]) Delete(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.hasActive {
			if err := tx.Model(item).Omit(clause.Associations).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(item)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound(r.opts.Entity)
		}
		return nil
	})
}

// PruneDeleted keeps the children for which deleted reports false.
func PruneDeleted[C any](children []C, deleted func(*C) bool) []C {
	out := children[:0]
	for i := range children {
		if !deleted(&children[i]) {
			out = append(out, children[i])
		}
	}
	return out
}
