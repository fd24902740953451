package vector

import (
	"flag"
	"math"

	"github.com/c2h5oh/datasize"
	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Config controls the allocation strategy shared by every buffer in the
// process. There is exactly one strategy; Configure replaces it.
type Config struct {
	// MaxAllocBytes caps the size of a single buffer allocation.
	// Zero means no limit beyond what the address space allows.
	MaxAllocBytes datasize.ByteSize `yaml:"max_alloc_bytes"`

	// Logger receives allocation events. Nil means no logging.
	Logger log.Logger `yaml:"-"`
}

// RegisterFlags registers the config flags under the "vector." prefix.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("vector.", f)
}

// RegisterFlagsWithPrefix registers the config flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.TextVar(&cfg.MaxAllocBytes, prefix+"max-alloc-bytes", datasize.ByteSize(0), "Maximum size of a single element buffer allocation. 0 disables the limit.")
}

// Validate checks the config for values the allocator cannot honour.
func (cfg *Config) Validate() error {
	if uint64(cfg.MaxAllocBytes) > math.MaxInt64 {
		return errors.Errorf("max-alloc-bytes %s exceeds the addressable range", cfg.MaxAllocBytes.HumanReadable())
	}
	return nil
}

type loggerHolder struct {
	log.Logger
}

var (
	maxAllocBytes = atomic.NewUint64(0)
	globalLogger  = atomic.NewPointer(&loggerHolder{log.NewNopLogger()})
)

// Configure validates cfg and installs it as the global allocation strategy.
// Buffers allocated before the call are not affected.
func Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	maxAllocBytes.Store(uint64(cfg.MaxAllocBytes))
	globalLogger.Store(&loggerHolder{logger})
	return nil
}

// CurrentConfig returns the installed allocation strategy.
func CurrentConfig() Config {
	return Config{
		MaxAllocBytes: datasize.ByteSize(maxAllocBytes.Load()),
		Logger:        currentLogger(),
	}
}

func currentLogger() log.Logger {
	return globalLogger.Load().Logger
}
