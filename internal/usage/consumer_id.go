package usage

import (
	"fmt"
	"os"
	"time"
)

// NewConsumerID builds a unique consumer name for the worker group.
// Combines hostname, pid and a timestamp so restarted workers never collide.
func NewConsumerID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano())
}
