package sql

import "context"

type NotificationHandler func(ctx context.Context, channel string, payload string)

type Database interface {
	Open(context.Context) error
	Close()
	Command(context.Context, string) error
	Listen(context.Context, string, NotificationHandler) error
}
