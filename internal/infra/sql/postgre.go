package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	_queryTimeout   = 5 * time.Second
	_openRetryDelay = 5 * time.Second
	maxRetries      = 10
)

var _ Database = (*PostgreDatabase)(nil)

type PostgreDatabase struct {
	dsn  string
	Conn *pgxpool.Pool
}

func NewPosgreORM(dsn string) (*DB, error) {
	gormDB, err := gorm.Open(postgres.Open(withPasswordFromEnv(dsn)), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, err
	}

	return &DB{
		DB:                   gormDB,
		autoMigrationEnabled: true,
		timeout:              _queryTimeout,
	}, nil
}

func NewPosgreDatabase(dsn string) *PostgreDatabase {
	return &PostgreDatabase{
		dsn: withPasswordFromEnv(dsn),
	}
}

func withPasswordFromEnv(dsn string) string {
	pass, ok := os.LookupEnv("CATFEEDER_SERVER_POSTGRES_PASSWORD")
	if ok {
		dsn = fmt.Sprintf("%s password=%s", dsn, pass)
	}
	return dsn
}

func (d *PostgreDatabase) Open(ctx context.Context) error {
	for range maxRetries {
		conn, err := pgxpool.New(ctx, d.dsn)
		if err == nil {
			err = conn.Ping(ctx)
		}
		if err == nil {
			d.Conn = conn
			return nil
		}

		slog.Warn("postgres not reachable, retrying", slog.Any("error", err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(_openRetryDelay):
		}
	}

	return fmt.Errorf("imposible to connect to database after %d retries", maxRetries)
}

func (d *PostgreDatabase) Close() {
	if d.Conn != nil {
		d.Conn.Close()
	}
}

func (d *PostgreDatabase) Command(ctx context.Context, sql string) error {
	cmdCtx, cancelFn := context.WithTimeout(ctx, _queryTimeout)
	defer cancelFn()

	_, err := d.Conn.Exec(cmdCtx, sql)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	return nil
}

// Listen holds one pooled connection in LISTEN mode and calls handler for
// every notification until ctx is cancelled.
func (d *PostgreDatabase) Listen(ctx context.Context, channel string, handler NotificationHandler) error {
	conn, err := d.Conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("listening on %s: %w", channel, err)
	}
	slog.Info("listening for postgres notifications", slog.String("channel", channel))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("waiting for notification: %w", err)
		}

		handler(ctx, notification.Channel, notification.Payload)
	}
}
