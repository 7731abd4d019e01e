// Package session persists rack state trees in a SQLite database.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/algo-fxrack/dsp/state"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned for unknown session names.
var ErrNotFound = errors.New("session not found")

// Info summarizes a stored session.
type Info struct {
	Name      string
	Version   int
	Params    int
	UpdatedAt time.Time
}

// Config configures the database connection.
type Config struct {
	Path     string
	LogLevel string
}

// Store saves and loads named state trees.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at cfg.Path and migrates the
// schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("session: empty database path")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("session: create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel(cfg.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}

	if cfg.Path != ":memory:" {
		if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			return nil, fmt.Errorf("session: enable WAL mode: %w", err)
		}
	}

	if err := db.AutoMigrate(models()...); err != nil {
		return nil, fmt.Errorf("session: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// logLevel maps an application log level onto gorm's. SQL tracing only
// shows at debug.
func logLevel(s string) gormlogger.LogLevel {
	switch strings.ToLower(s) {
	case "debug", "trace":
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	return sqlDB.Close()
}

// Save stores tree under name, replacing any previous content.
func (s *Store) Save(name string, tree *state.Tree) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("session: empty name")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var sess Session

		err := tx.Where("name = ?", name).First(&sess).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sess = Session{Name: name, Version: tree.Version}
			if err := tx.Create(&sess).Error; err != nil {
				return fmt.Errorf("session: create %q: %w", name, err)
			}
		case err != nil:
			return fmt.Errorf("session: find %q: %w", name, err)
		default:
			if err := deleteChildren(tx, sess.ID); err != nil {
				return err
			}

			sess.Version = tree.Version
			if err := tx.Save(&sess).Error; err != nil {
				return fmt.Errorf("session: update %q: %w", name, err)
			}
		}

		for _, key := range tree.IntKeys() {
			values, _ := tree.IntsFor(key)

			arr := IntArray{SessionID: sess.ID, Name: key}
			for i, v := range values {
				arr.Values = append(arr.Values, IntValue{Position: i, Value: v})
			}

			if err := tx.Create(&arr).Error; err != nil {
				return fmt.Errorf("session: save array %s: %w", key, err)
			}
		}

		params := make([]ParamValue, 0, len(tree.Floats))
		for _, key := range tree.FloatKeys() {
			v, _ := tree.Float(key)
			params = append(params, ParamValue{SessionID: sess.ID, Name: key, Value: v})
		}

		if len(params) > 0 {
			if err := tx.CreateInBatches(params, 200).Error; err != nil {
				return fmt.Errorf("session: save params: %w", err)
			}
		}

		return nil
	})
}

// Load returns the tree stored under name.
func (s *Store) Load(name string) (*state.Tree, error) {
	var sess Session

	err := s.db.
		Preload("Arrays").
		Preload("Arrays.Values", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Params").
		Where("name = ?", name).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session: %w: %q", ErrNotFound, name)
		}

		return nil, fmt.Errorf("session: load %q: %w", name, err)
	}

	tree := state.New()
	tree.Version = sess.Version

	for _, arr := range sess.Arrays {
		values := make([]int, len(arr.Values))
		for i, v := range arr.Values {
			values[i] = v.Value
		}

		tree.SetInts(arr.Name, values)
	}

	for _, p := range sess.Params {
		tree.SetFloat(p.Name, p.Value)
	}

	return tree, nil
}

// List returns every stored session ordered by name.
func (s *Store) List() ([]Info, error) {
	var sessions []Session
	if err := s.db.Order("name").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}

	var counts []struct {
		SessionID uint
		N         int
	}

	err := s.db.Model(&ParamValue{}).
		Select("session_id, COUNT(*) AS n").
		Group("session_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("session: count params: %w", err)
	}

	params := make(map[uint]int, len(counts))
	for _, c := range counts {
		params[c.SessionID] = c.N
	}

	out := make([]Info, len(sessions))
	for i, sess := range sessions {
		out[i] = Info{Name: sess.Name, Version: sess.Version, Params: params[sess.ID], UpdatedAt: sess.UpdatedAt}
	}

	return out, nil
}

// Delete removes the session stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sess Session
		if err := tx.Where("name = ?", name).First(&sess).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("session: %w: %q", ErrNotFound, name)
			}

			return fmt.Errorf("session: find %q: %w", name, err)
		}

		if err := deleteChildren(tx, sess.ID); err != nil {
			return err
		}

		result := tx.Delete(&Session{}, sess.ID)
		if result.Error != nil {
			return fmt.Errorf("session: delete %q: %w", name, result.Error)
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("session: %w: %q", ErrNotFound, name)
		}

		return nil
	})
}

func deleteChildren(tx *gorm.DB, sessionID uint) error {
	arrays := tx.Model(&IntArray{}).Select("id").Where("session_id = ?", sessionID)

	if err := tx.Where("array_id IN (?)", arrays).Delete(&IntValue{}).Error; err != nil {
		return fmt.Errorf("session: delete array values: %w", err)
	}

	if err := tx.Where("session_id = ?", sessionID).Delete(&IntArray{}).Error; err != nil {
		return fmt.Errorf("session: delete arrays: %w", err)
	}

	if err := tx.Where("session_id = ?", sessionID).Delete(&ParamValue{}).Error; err != nil {
		return fmt.Errorf("session: delete params: %w", err)
	}

	return nil
}
