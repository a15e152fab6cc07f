package journal

import (
	"time"

	"github.com/yanun0323/errors"
)

const (
	defaultQueueSize  = 1024
	defaultBufferSize = 64 * 1024
)

// Config controls journal writer behavior.
type Config struct {
	Path          string
	QueueSize     int
	BufferSize    int
	FlushInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Path == "" {
		return errors.New("invalid journal config: Path is empty")
	}
	if c.QueueSize <= 0 {
		return errors.New("invalid journal config: QueueSize must be > 0")
	}
	if c.BufferSize <= 0 {
		return errors.New("invalid journal config: BufferSize must be > 0")
	}
	if c.FlushInterval < 0 {
		return errors.New("invalid journal config: FlushInterval must be >= 0")
	}
	return nil
}
