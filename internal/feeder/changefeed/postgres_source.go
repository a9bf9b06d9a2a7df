package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/sql"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultNotifyChannel = "sensor_data_insert"

	_triggerName    = "sensor_data_insert_notify"
	_sourcePostgres = "postgres"
)

type PostgresSourceOpts struct {
	Database       sql.Database
	Channel        string
	Location       *time.Location
	Notifier       *Notifier
	InstallTrigger bool
	NewBackOff     func() backoff.BackOff
}

func NewPostgresSource(opts PostgresSourceOpts) *PostgresSource {
	channel := opts.Channel
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	newBackOff := opts.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}

	return &PostgresSource{
		db:             opts.Database,
		channel:        channel,
		location:       opts.Location,
		notifier:       opts.Notifier,
		installTrigger: opts.InstallTrigger,
		newBackOff:     newBackOff,
	}
}

var _ async.Worker = (*PostgresSource)(nil)

// PostgresSource listens for NOTIFY events raised by a trigger on sensor_data.
type PostgresSource struct {
	lifecycle
	db             sql.Database
	channel        string
	location       *time.Location
	notifier       *Notifier
	installTrigger bool
	installed      bool
	newBackOff     func() backoff.BackOff
}

func (s *PostgresSource) Run(ctx context.Context, done func()) {
	slog.Debug("postgres change feed started", slog.String("channel", s.channel))
	defer done()

	ctx, cancel := s.start(ctx)
	defer cancel()

	runWithRetry(ctx, _sourcePostgres, s.newBackOff(), func(ctx context.Context) error {
		if s.installTrigger && !s.installed {
			if err := s.InstallTrigger(ctx); err != nil {
				return err
			}
			s.installed = true
		}
		return s.db.Listen(ctx, s.channel, s.handle)
	})
	slog.Info("postgres change feed stopped")
}

// InstallTrigger makes every insert into sensor_data publish the new row as
// JSON on the notify channel.
func (s *PostgresSource) InstallTrigger(ctx context.Context) error {
	for _, statement := range TriggerStatements(s.channel) {
		if err := s.db.Command(ctx, statement); err != nil {
			return fmt.Errorf("installing notify trigger: %w", err)
		}
	}

	slog.Info("notify trigger installed", slog.String("trigger", _triggerName), slog.String("channel", s.channel))
	return nil
}

func TriggerStatements(channel string) []string {
	literal := strings.ReplaceAll(channel, "'", "''")
	return []string{
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('%s', row_to_json(NEW)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`, _triggerName, literal),
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON sensor_data`, _triggerName),
		fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT ON sensor_data FOR EACH ROW EXECUTE FUNCTION %s()`, _triggerName, _triggerName),
	}
}

func (s *PostgresSource) handle(ctx context.Context, channel string, payload string) {
	var data SensorDataPayload
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		slog.Warn("discarding notification", slog.String("channel", channel), slog.Any("error", err))
		return
	}

	reading, err := data.ToDomain(s.location)
	if err != nil {
		slog.Warn("discarding notification", slog.String("channel", channel), slog.Any("error", err))
		return
	}

	if err := s.notifier.Notify(ctx, _sourcePostgres, reading); err != nil {
		slog.Error("forwarding notification", slog.Any("error", err))
	}
}
