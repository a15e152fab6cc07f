// Package store persists finished run results to PostgreSQL.
package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/yanun0323/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"main/internal/sim"
)

const (
	defaultHost    = "localhost"
	defaultPort    = 5432
	defaultSSLMode = "disable"
)

// Option defines connection options for the result database.
type Option struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	Params     map[string]string
	ConnString string
	Config     *gorm.Config
}

// Store wraps a PostgreSQL connection pool for run results.
type Store struct {
	opt Option
	db  *gorm.DB
}

// Open creates a result store and migrates its tables.
func Open(option Option) (*Store, error) {
	connString, err := option.dsn()
	if err != nil {
		return nil, err
	}

	config := option.Config
	if config == nil {
		config = &gorm.Config{}
	}

	db, err := gorm.Open(postgres.Open(connString), config)
	if err != nil {
		return nil, errors.Wrap(err, "open result store")
	}
	if err := db.AutoMigrate(&Run{}, &Fill{}, &EquitySample{}); err != nil {
		return nil, errors.Wrap(err, "migrate result store")
	}

	return &Store{opt: option, db: db}, nil
}

// DB returns the underlying gorm.DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveResult persists a run, its fills and its equity series in one
// transaction and returns the run row ID.
func (s *Store) SaveResult(ctx context.Context, meta RunMeta, result sim.Result) (uint64, error) {
	run := runFrom(meta, result)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(result.Fills) > 0 {
			fills := make([]Fill, 0, len(result.Fills))
			for _, f := range result.Fills {
				fills = append(fills, Fill{
					RunID:      run.ID,
					OrderID:    f.OrderID,
					Time:       f.CreatedAt(),
					Direction:  f.Side.String(),
					Quantity:   f.Quantity,
					FillPrice:  f.FillPrice,
					Commission: f.Commission,
				})
			}
			if err := tx.Create(&fills).Error; err != nil {
				return err
			}
		}
		if len(result.Equity) > 0 {
			samples := make([]EquitySample, 0, len(result.Equity))
			for _, p := range result.Equity {
				samples = append(samples, EquitySample{
					RunID:  run.ID,
					Time:   p.Time,
					Equity: p.Equity,
				})
			}
			if err := tx.Create(&samples).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "save run result")
	}
	return run.ID, nil
}

// LoadRun fetches one run row with its fills.
func (s *Store) LoadRun(ctx context.Context, id uint64) (Run, []Fill, error) {
	var run Run
	if err := s.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return Run{}, nil, errors.Wrap(err, "load run")
	}
	var fills []Fill
	if err := s.db.WithContext(ctx).Where("run_id = ?", id).Order("time").Find(&fills).Error; err != nil {
		return Run{}, nil, errors.Wrap(err, "load run fills")
	}
	return run, fills, nil
}

func (opt Option) dsn() (string, error) {
	if opt.ConnString != "" {
		return opt.ConnString, nil
	}

	host := opt.Host
	if host == "" {
		host = defaultHost
	}

	port := opt.Port
	if port == 0 {
		port = defaultPort
	}

	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}

	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}

	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	for key, value := range opt.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}
	if len(query) != 0 {
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
