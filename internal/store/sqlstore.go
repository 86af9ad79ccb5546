package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio/pkg/database"
)

// SQLStore keeps documents as JSON rows in a single gorm table and evaluates queries
// in memory. Listeners are woken by the writes that go through this store.
type SQLStore struct {
	db     *gorm.DB
	feed   *feed
	now    func() time.Time
	closed atomic.Bool
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, feed: newFeed(), now: time.Now}
}

// Listeners reports how many iterators are open.
func (s *SQLStore) Listeners() int { return s.feed.count() }

func (s *SQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.feed.closeAll()
	return database.Close(s.db)
}

func (s *SQLStore) Get(ctx context.Context, ref DocRef) (Document, error) {
	row, err := s.load(s.db.WithContext(ctx), ref)
	if err != nil {
		return Document{}, err
	}
	return rowToDocument(row)
}

func (s *SQLStore) List(ctx context.Context, q Query) ([]Document, error) {
	var rows []database.DocumentRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", q.Collection).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", q.Collection, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		d, err := rowToDocument(r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return Apply(q, docs), nil
}

func (s *SQLStore) Add(ctx context.Context, collection string, data map[string]any) (DocRef, error) {
	ref := DocRef{Collection: collection, ID: database.NewID()}
	prepared, err := s.prepare(data)
	if err != nil {
		return DocRef{}, err
	}
	raw, err := Marshal(prepared)
	if err != nil {
		return DocRef{}, err
	}
	row := database.DocumentRow{Collection: ref.Collection, ID: ref.ID, Data: datatypes.JSON(raw)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return DocRef{}, fmt.Errorf("add %s: %w", collection, err)
	}
	s.feed.publish(collection)
	return ref, nil
}

func (s *SQLStore) Set(ctx context.Context, ref DocRef, data map[string]any, merge bool) error {
	prepared, err := s.prepare(data)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next := prepared
		if merge {
			current, err := s.loadData(tx, ref)
			switch {
			case err == nil:
				next = mergeData(current, prepared)
			case !errors.Is(err, ErrNotFound):
				return err
			}
		}
		return s.save(tx, ref, next)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", ref.Key(), err)
	}
	s.feed.publish(ref.Collection)
	return nil
}

func (s *SQLStore) Update(ctx context.Context, ref DocRef, data map[string]any) error {
	prepared, err := s.prepare(data)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadData(tx, ref)
		if err != nil {
			return err
		}
		for k, v := range prepared {
			current[k] = v
		}
		return s.save(tx, ref, current)
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", ref.Key(), err)
	}
	s.feed.publish(ref.Collection)
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, ref DocRef) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", ref.Collection, ref.ID).
		Delete(&database.DocumentRow{}).Error
	if err != nil {
		return fmt.Errorf("delete %s: %w", ref.Key(), err)
	}
	s.feed.publish(ref.Collection)
	return nil
}

// Increment adds delta to a numeric field, creating the document or field when missing.
func (s *SQLStore) Increment(ctx context.Context, ref DocRef, field string, delta int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadData(tx, ref)
		if errors.Is(err, ErrNotFound) {
			current, err = map[string]any{}, nil
		}
		if err != nil {
			return err
		}
		n, _ := toInt(current[field])
		current[field] = n + delta
		return s.save(tx, ref, current)
	})
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", ref.Key(), field, err)
	}
	s.feed.publish(ref.Collection)
	return nil
}

func (s *SQLStore) Listen(ctx context.Context, target Target) (Iterator, error) {
	if s.closed.Load() {
		return nil, ErrStopped
	}
	return &sqlIterator{
		store:  s,
		target: target,
		l:      s.feed.add(target.CollectionPath()),
	}, nil
}

func (s *SQLStore) prepare(data map[string]any) (map[string]any, error) {
	n, err := normalize(data)
	if err != nil {
		return nil, err
	}
	return resolveTimestamps(n, s.now()), nil
}

func (s *SQLStore) load(tx *gorm.DB, ref DocRef) (database.DocumentRow, error) {
	var row database.DocumentRow
	err := tx.Where("collection = ? AND id = ?", ref.Collection, ref.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrNotFound
	}
	if err != nil {
		return row, fmt.Errorf("get %s: %w", ref.Key(), err)
	}
	return row, nil
}

func (s *SQLStore) loadData(tx *gorm.DB, ref DocRef) (map[string]any, error) {
	row, err := s.load(tx, ref)
	if err != nil {
		return nil, err
	}
	return Unmarshal([]byte(row.Data))
}

func (s *SQLStore) save(tx *gorm.DB, ref DocRef, data map[string]any) error {
	raw, err := Marshal(data)
	if err != nil {
		return err
	}
	row := database.DocumentRow{Collection: ref.Collection, ID: ref.ID, Data: datatypes.JSON(raw)}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLStore) snapshot(ctx context.Context, target Target) (Snapshot, error) {
	switch t := target.(type) {
	case DocRef:
		d, err := s.Get(ctx, t)
		if errors.Is(err, ErrNotFound) {
			return Snapshot{}, nil
		}
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Docs: []Document{d}}, nil
	case Query:
		docs, err := s.List(ctx, t)
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Docs: docs}, nil
	}
	return Snapshot{}, fmt.Errorf("unsupported target %T", target)
}

func rowToDocument(row database.DocumentRow) (Document, error) {
	data, err := Unmarshal([]byte(row.Data))
	if err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", row.Collection, row.ID, err)
	}
	return Document{ID: row.ID, Collection: row.Collection, Data: data}, nil
}

type sqlIterator struct {
	store   *SQLStore
	target  Target
	l       *listener
	started bool
}

func (it *sqlIterator) Next(ctx context.Context) (Snapshot, error) {
	select {
	case <-it.l.stopped:
		return Snapshot{}, ErrStopped
	default:
	}
	if it.started {
		select {
		case <-it.l.notify:
		case <-it.l.stopped:
			return Snapshot{}, ErrStopped
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
	it.started = true
	return it.store.snapshot(ctx, it.target)
}

func (it *sqlIterator) Stop() { it.store.feed.remove(it.l) }

// OpenSQL opens and migrates the sqlite database at path.
func OpenSQL(driver, path string) (*SQLStore, error) {
	db, err := database.Open(driver, path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return NewSQLStore(db), nil
}

// Seed loads a seed file into the store's table without overwriting existing documents.
func (s *SQLStore) Seed(path string) (int, error) {
	set, err := database.LoadSeedFromJSON(path)
	if err != nil {
		return 0, err
	}
	n, err := database.Seed(s.db, set)
	if err != nil {
		return 0, err
	}
	for c := range set {
		s.feed.publish(c)
	}
	return n, nil
}
