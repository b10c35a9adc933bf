package instance

import (
	"os"

	"github.com/angelmondragon/haani-backend/pkg/env"
)

// ID names this process in logs. HAANI_INSTANCE_ID wins, then the platform's
// DYNO, then the hostname.
func ID() string {
	fallback, err := os.Hostname()
	if err != nil || fallback == "" {
		fallback = "local"
	}
	return env.Get("HAANI_INSTANCE_ID", env.Get("DYNO", fallback))
}
