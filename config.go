package flowcore

import "github.com/ochrecore/flowcore/internal/config"

// Configuration shapes a config collaborator (TOML reader, flag parser,
// or hand-built struct literal) populates, re-exported at the root so
// callers never need to import internal/config directly. Parsing itself
// stays out of scope, per spec.md §6.
type (
	ProcessConfig      = config.ProcessConfig
	PortConfig         = config.PortConfig
	FlowDirectorConfig = config.FlowDirectorConfig
	NetSpecConfig      = config.NetSpecConfig
)

// Default values a config collaborator falls back to when a key is
// absent, re-exported from internal/config.
const (
	DefaultPoolSize    = config.DefaultPoolSize
	DefaultCacheSize   = config.DefaultCacheSize
	DefaultSecondary   = config.DefaultSecondary
	DefaultPrimaryCore = config.DefaultPrimaryCore
	DefaultName        = config.DefaultName
	DefaultNumRxDesc   = config.DefaultNumRxDesc
	DefaultNumTxDesc   = config.DefaultNumTxDesc
)

// DefaultProcessConfig returns a ProcessConfig populated with the
// package's fallback defaults.
func DefaultProcessConfig() ProcessConfig { return config.DefaultProcessConfig() }
