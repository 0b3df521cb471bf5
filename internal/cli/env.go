package cli

import (
	"io"
	"os"

	"github.com/julianstephens/opreply/internal/logger"
	"github.com/julianstephens/opreply/internal/opreply/config"
)

// Env carries what every command needs. It is bound into kong's run
// context by main.
type Env struct {
	Logger logger.Logger
	Config *config.Config
	Out    io.Writer
}

// NewEnv returns an Env with defaults for anything left nil.
func NewEnv(lg logger.Logger, cfg *config.Config) *Env {
	if lg == nil {
		lg = logger.NoOpLogger{}
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Env{Logger: lg, Config: cfg, Out: os.Stdout}
}
