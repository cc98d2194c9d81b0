package db

import (
	"context"
	"reflect"

	"phreddit/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// Filter is a column -> value equality filter. An empty filter matches every record.
type Filter map[string]interface{}

// Store is the entity store: CRUD by id and query by filter over any model kind.
// The kind is selected by the model or destination pointer passed in, the way gorm does.
type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

// DB exposes the underlying connection for callers that need raw gorm access.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// FindByID loads the record with the given id into dest.
// dest is reset first: gorm would otherwise add its old primary key to the query.
func (s *Store) FindByID(ctx context.Context, dest interface{}, id string) error {
	if id == "" {
		return ErrNotFound
	}
	if v := reflect.ValueOf(dest); v.Kind() == reflect.Ptr && !v.IsNil() {
		v.Elem().SetZero()
	}
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Take(dest).Error)
}

// Find loads every record matching filter into dest (a pointer to a slice).
func (s *Store) Find(ctx context.Context, dest interface{}, filter Filter) error {
	q := s.db.WithContext(ctx)
	if len(filter) > 0 {
		q = q.Where(map[string]interface{}(filter))
	}
	return q.Find(dest).Error
}

// FindByIDs loads the records whose id is in ids. Missing ids are skipped.
func (s *Store) FindByIDs(ctx context.Context, dest interface{}, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Find(dest).Error
}

// FindContaining loads every record whose id-list column holds id.
func (s *Store) FindContaining(ctx context.Context, dest interface{}, column, id string) error {
	return s.db.WithContext(ctx).Where(column+" LIKE ?", listPattern(id)).Find(dest).Error
}

// PullFromAll removes id from the id-list column of every record of model's
// kind that references it and returns how many records were patched.
func (s *Store) PullFromAll(ctx context.Context, model interface{}, column, id string) (int, error) {
	var rows []struct {
		ID   string
		List models.IDList
	}
	err := s.db.WithContext(ctx).Model(model).
		Select("id", column+" AS list").
		Where(column+" LIKE ?", listPattern(id)).
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	patched := 0
	for _, row := range rows {
		list, changed := row.List.Without(id)
		if !changed {
			continue
		}
		err := s.db.WithContext(ctx).Model(model).Where("id = ?", row.ID).Update(column, list).Error
		if err != nil {
			return patched, err
		}
		patched++
	}
	return patched, nil
}

// listPattern matches the JSON encoding of id inside an IDList column.
// LIKE may over-match, so callers re-check with IDList.Contains.
func listPattern(id string) string {
	return `%"` + id + `"%`
}

// Exists reports whether filter matches at least one record of model's kind.
func (s *Store) Exists(ctx context.Context, model interface{}, filter Filter) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where(map[string]interface{}(filter)).Limit(1).Count(&count).Error
	return count > 0, err
}

func (s *Store) Create(ctx context.Context, entity interface{}) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

// UpdateByID applies patch (column -> value) to the record with the given id.
func (s *Store) UpdateByID(ctx context.Context, model interface{}, id string, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return s.FindByID(ctx, model, id)
	}
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Increment adds delta to a numeric column in place.
func (s *Store) Increment(ctx context.Context, model interface{}, id, column string, delta int) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes one record. Deleting an absent id is not an error; the
// returned bool reports whether a record was actually removed.
func (s *Store) DeleteByID(ctx context.Context, model interface{}, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	return res.RowsAffected > 0, res.Error
}

// DeleteMany removes every record whose id is in ids and returns how many were removed.
func (s *Store) DeleteMany(ctx context.Context, model interface{}, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(model)
	return res.RowsAffected, res.Error
}

// Transaction runs fn against a store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
