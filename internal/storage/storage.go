package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Store is the content repository backed by a relational database.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (and creates if needed) the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(withPragmas(dsn)), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	// SQLite allows a single writer; one connection serializes writes
	// instead of surfacing SQLITE_BUSY to callers.
	sqlDB.SetMaxOpenConns(1)

	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrate runs database migrations
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.Article{},
		&models.ArticleVersion{},
		&models.BreakingNewsItem{},
		&models.LiveStream{},
		&models.Video{},
		&models.Advertisement{},
		&models.RssSource{},
		&models.RssItem{},
	)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SetClock overrides the time source. Tests use it to pin "now".
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// ListFilter carries the equality filters, substring search and pagination
// accepted by list operations. Each entity honours the fields that apply to it.
type ListFilter struct {
	CategoryID *uint
	Status     string
	Active     *bool
	Imported   *bool
	Position   string
	Visibility string
	Search     string
	Limit      int
	Offset     int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Page is one page of a list result.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// translate maps gorm/driver errors onto the application error kinds.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what)
	case isUniqueViolation(err):
		return apperr.Conflict(what + " already exists")
	default:
		return apperr.Persistence(fmt.Errorf("%s: %w", strings.ToLower(what), err))
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

func create[T any](ctx context.Context, db *gorm.DB, rec *T, what string) error {
	return translate(db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error, what)
}

func get[T any](ctx context.Context, db *gorm.DB, id uint, what string) (*T, error) {
	var rec T
	if err := db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err, what)
	}
	return &rec, nil
}

// update applies a partial column update and returns the fresh record.
func update[T any](ctx context.Context, db *gorm.DB, id uint, changes map[string]any, what string) (*T, error) {
	var out *T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := get[T](ctx, tx, id, what)
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := tx.Model(rec).Omit(clause.Associations).Updates(changes).Error; err != nil {
				return translate(err, what)
			}
		}
		out, err = get[T](ctx, tx, id, what)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func remove[T any](ctx context.Context, db *gorm.DB, id uint, what string) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(what)
	}
	return nil
}

// list counts and fetches one page of the query q. Associations named in
// preloads are only loaded for the page itself.
func list[T any](ctx context.Context, q *gorm.DB, f ListFilter, order string, what string, preloads ...string) (*Page[T], error) {
	base := q.WithContext(ctx)

	var total int64
	if err := base.Model(new(T)).Count(&total).Error; err != nil {
		return nil, translate(err, what)
	}

	page := base.Order(order).Limit(f.Limit).Offset(f.Offset)
	for _, p := range preloads {
		page = page.Preload(p)
	}
	items := make([]T, 0, f.Limit)
	if err := page.Find(&items).Error; err != nil {
		return nil, translate(err, what)
	}

	return &Page[T]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func searchTitles(q *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" {
		return q
	}
	pattern := "%" + escapeLike(search) + "%"
	conds := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, c := range columns {
		conds = append(conds, c+" LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
