package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Database is the PostgreSQL implementation of store.Store
type Database struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ store.Store = (*Database)(nil)

// NewDatabase connects with the default retry policy
func NewDatabase(dsn string, logger *zap.Logger) (*Database, error) {
	return NewDatabaseWithRetry(dsn, 5, time.Second, logger)
}

// NewDatabaseWithRetry connects with exponential backoff, which covers cold
// starts of serverless databases, and then ensures the schema exists.
func NewDatabaseWithRetry(dsn string, maxRetries int, initialDelay time.Duration, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("db")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	poolConfig.MaxConns = 30
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Simple protocol keeps transaction poolers happy
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	origHost := poolConfig.ConnConfig.Host
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, network, address string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(address)
		if err != nil || host == "" || port == "" {
			host = origHost
			port = "5432"
		}
		// Prefer IPv4, fall back to the first address
		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err == nil {
			for _, ipa := range ips {
				if ipv4 := ipa.IP.To4(); ipv4 != nil {
					return (&net.Dialer{}).DialContext(ctx, "tcp4", net.JoinHostPort(ipv4.String(), port))
				}
			}
			if len(ips) > 0 {
				return (&net.Dialer{}).DialContext(ctx, "tcp", net.JoinHostPort(ips[0].IP.String(), port))
			}
		}
		return (&net.Dialer{}).DialContext(ctx, "tcp4", address)
	}
	if poolConfig.ConnConfig.TLSConfig != nil && poolConfig.ConnConfig.TLSConfig.ServerName == "" {
		poolConfig.ConnConfig.TLSConfig.ServerName = origHost
	}

	var pool *pgxpool.Pool
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		logger.Info("Connecting to database",
			zap.Int("attempt", attempt), zap.Int("max_attempts", maxRetries),
			zap.String("user", poolConfig.ConnConfig.User), zap.String("host", poolConfig.ConnConfig.Host))

		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			lastErr = fmt.Errorf("failed to create connection pool: %w", err)
			logger.Warn("Failed to create pool", zap.Int("attempt", attempt), zap.Error(err))
			pool = nil
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = pool.Ping(ctx)
			cancel()
			if err == nil {
				logger.Info("Connected to database", zap.Int("attempt", attempt))
				break
			}
			lastErr = fmt.Errorf("failed to ping database: %w", err)
			logger.Warn("Database ping failed", zap.Int("attempt", attempt), zap.Error(err))
			pool.Close()
			pool = nil
		}

		if attempt < maxRetries {
			// 1s, 2s, 4s, 8s ...
			delay := initialDelay * time.Duration(1<<(attempt-1))
			logger.Info("Retrying database connection", zap.Duration("delay", delay))
			time.Sleep(delay)
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
	}

	db := &Database{Pool: pool, logger: logger}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Close closes the connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info("Database connection pool closed")
	}
}

// Ping checks the database is reachable
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

// translate maps driver errors onto the store sentinels
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// casMiss explains why a compare-and-set update touched no rows
func (db *Database) casMiss(ctx context.Context, table, id string) error {
	var exists bool
	if err := db.Pool.QueryRow(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table), id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s %s: %w", table, id, err)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStatusConflict
}
