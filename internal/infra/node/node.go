package node

import (
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Set at build time with -ldflags "-X catfeeder-server/internal/infra/node.Version=...".
var Version = "development"
var CommitHash = "unknown"

// Info identifies the running catfeeder server instance.
type Info struct {
	ID         string
	Hostname   string
	IPAddress  string
	Version    string
	CommitHash string
}

var (
	current     Info
	currentOnce sync.Once
)

// Current returns the instance information. It is resolved once per process.
func Current() Info {
	currentOnce.Do(func() {
		current = Info{
			ID:         uuid.NewString(),
			Hostname:   hostname(),
			IPAddress:  outboundIP(),
			Version:    Version,
			CommitHash: CommitHash,
		}
	})
	return current
}

// LogAttrs are attached to every log record of the process.
func (i Info) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("version", i.Version),
		slog.String("node_id", i.ID),
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}
