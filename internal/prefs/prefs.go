// Package prefs keeps the terminal client's local settings: theme and language.
package prefs

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio/internal/i18n"
	"portfolio/pkg/database"
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

const (
	keyTheme = "theme"
	keyLang  = "lang"
)

// Store persists string values by key. Get reports false for unknown keys.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Prefs reads typed settings through a Store.
type Prefs struct {
	st Store
}

func New(st Store) *Prefs { return &Prefs{st: st} }

// Theme defaults to dark when nothing was saved or the saved value is unknown.
func (p *Prefs) Theme() Theme {
	v, ok, err := p.st.Get(keyTheme)
	if err != nil || !ok {
		return Dark
	}
	if t := Theme(v); t == Light {
		return t
	}
	return Dark
}

func (p *Prefs) SetTheme(t Theme) error { return p.st.Set(keyTheme, string(t)) }

// Lang returns the saved language or fallback.
func (p *Prefs) Lang(fallback i18n.Lang) i18n.Lang {
	v, ok, err := p.st.Get(keyLang)
	if err != nil || !ok {
		return fallback
	}
	return i18n.ParseLang(v)
}

func (p *Prefs) SetLang(l i18n.Lang) error { return p.st.Set(keyLang, l.String()) }

// DBStore keeps preferences in a local sqlite file.
type DBStore struct {
	db *gorm.DB
}

// Open opens (and creates) the preference database at path with the cgo-free driver.
func Open(path string) (*DBStore, error) {
	db, err := database.Open(database.DriverPure, path)
	if err != nil {
		return nil, err
	}
	if err := database.MigratePrefs(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return &DBStore{db: db}, nil
}

func (s *DBStore) Get(key string) (string, bool, error) {
	var p database.Pref
	err := s.db.Where("key = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read pref %s: %w", key, err)
	}
	return p.Value, true, nil
}

func (s *DBStore) Set(key, value string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&database.Pref{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to save pref %s: %w", key, err)
	}
	return nil
}

func (s *DBStore) Close() error { return database.Close(s.db) }

// Memory is a Store for clients without a preference file.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemory() *Memory { return &Memory{m: map[string]string{}} }

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}
