package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no holiday exists for the requested date.
var ErrNotFound = errors.New(config.ErrHolidayNotFound)

// Holiday is a persisted holiday. Day holds the civil date as YYYY-MM-DD so
// that ordering and range queries work on plain strings.
type Holiday struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Day       string    `gorm:"uniqueIndex;size:10;not null"`
	Name      string    `gorm:"size:255;not null"`
	Source    string    `gorm:"index;size:20;default:'manual'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Date returns the civil date of h at midnight in loc.
func (h Holiday) Date(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(config.DateLayoutISO, h.Day, loc)
}

// Store keeps user holidays in a database.
type Store struct {
	db *gorm.DB
}

// New wraps an open database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the SQLite database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}

	slog.Debug(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyPath, path,
	)
	return s, nil
}

// Migrate creates the necessary tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Holiday{}); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreMigrate, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add stores a holiday on the civil date of date. An existing holiday on the
// same date is renamed instead of duplicated.
func (s *Store) Add(ctx context.Context, date time.Time, name, source string) (*Holiday, error) {
	if name == "" {
		name = config.FallbackName
	}
	if source == "" {
		source = config.HolidaySourceManual
	}

	h := &Holiday{
		ID:     uuid.New().String(),
		Day:    date.Format(config.DateLayoutISO),
		Name:   name,
		Source: source,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "source", "updated_at"}),
	}).Create(h).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, date)
}

// Get returns the holiday stored on the civil date of date.
func (s *Store) Get(ctx context.Context, date time.Time) (*Holiday, error) {
	var h Holiday
	err := s.db.WithContext(ctx).
		Where("day = ?", date.Format(config.DateLayoutISO)).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Remove deletes the holiday stored on the civil date of date.
func (s *Store) Remove(ctx context.Context, date time.Time) error {
	res := s.db.WithContext(ctx).
		Where("day = ?", date.Format(config.DateLayoutISO)).
		Delete(&Holiday{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, date.Format(config.DateLayoutISO))
	}
	return nil
}

// List returns every stored holiday ordered by date.
func (s *Store) List(ctx context.Context) ([]Holiday, error) {
	var hs []Holiday
	err := s.db.WithContext(ctx).Order("day ASC").Find(&hs).Error
	return hs, err
}

// Between returns the holidays whose civil date lies in [from, to].
func (s *Store) Between(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	var hs []Holiday
	err := s.db.WithContext(ctx).
		Where("day >= ? AND day <= ?", from.Format(config.DateLayoutISO), to.Format(config.DateLayoutISO)).
		Order("day ASC").
		Find(&hs).Error
	return hs, err
}

// ReplaceSource atomically swaps every holiday of source for hs. Dates already
// held by another source keep their row.
func (s *Store) ReplaceSource(ctx context.Context, source string, hs []schedule.Holiday) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source = ?", source).Delete(&Holiday{}).Error; err != nil {
			return err
		}
		for _, h := range hs {
			name := h.Name
			if name == "" {
				name = config.FallbackName
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Holiday{
				ID:     uuid.New().String(),
				Day:    h.Date.Format(config.DateLayoutISO),
				Name:   name,
				Source: source,
			})
			if res.Error != nil {
				return res.Error
			}
			added += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Holidays loads every stored holiday as calendar input, dated in loc.
func (s *Store) Holidays(ctx context.Context, loc *time.Location) ([]schedule.Holiday, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]schedule.Holiday, 0, len(rows))
	for _, r := range rows {
		d, err := r.Date(loc)
		if err != nil {
			slog.Warn(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyValue, r.Day,
				config.LogKeyError, err)
			continue
		}
		out = append(out, schedule.Holiday{Date: d, Name: r.Name})
	}
	return out, nil
}
