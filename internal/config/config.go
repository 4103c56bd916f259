// Package config defines the Go shapes a TOML configuration collaborator
// populates. Parsing itself is out of scope (spec.md §1's "deliberately
// out of scope" list); this package exists so the structs a real parser
// would fill in, and the demo binary hand-builds, are part of the
// module's public surface. Ported from NetBricks' config_reader.rs
// shapes.
package config

// Default values a TOML reader would fall back to when a key is absent,
// named after config_reader.rs's constants.
const (
	DefaultPoolSize    = 2048
	DefaultCacheSize   = 32
	DefaultSecondary   = false
	DefaultPrimaryCore = 0
	DefaultName        = "flowcore"
	DefaultNumRxDesc   = 128
	DefaultNumTxDesc   = 128
)

// FlowDirectorConfig mirrors RteFdirConf: the NIC's flow-director
// classification rule, expressed as an IPv4 5-tuple mask plus a
// partition-allocation and matching mode. Interpretation of Pballoc and
// Mode is driver-specific; this runtime only carries the values through.
type FlowDirectorConfig struct {
	Pballoc      int
	Mode         int
	SrcIPMask    uint32
	DstIPMask    uint32
	TOSMask      uint8
	TTLMask      uint8
	ProtoMask    uint8
	SrcPortMask  uint16
	DstPortMask  uint16
}

// NetSpecConfig is an opaque network-virtualization spec string passed
// through to the NIC driver bring-up collaborator (DPDK's --vdev
// equivalent); this runtime treats it as an opaque token.
type NetSpecConfig string

// PortConfig describes one configured NIC port.
type PortConfig struct {
	Name string

	RxCores []int
	TxCores []int
	KCores  []int // cores owning this port's kernel-interface sibling, if any

	RxDescriptors int
	TxDescriptors int

	Loopback bool
	TSO      bool
	Checksum bool

	FlowDirector *FlowDirectorConfig
}

// SymmetricQueue reports whether RxCores and TxCores were configured
// identically (the config_reader.rs "cores" shorthand, as opposed to
// separately specified "rx_cores"/"tx_cores").
func (p *PortConfig) SymmetricQueue() bool {
	if len(p.RxCores) != len(p.TxCores) {
		return false
	}
	for i := range p.RxCores {
		if p.RxCores[i] != p.TxCores[i] {
			return false
		}
	}
	return true
}

// ProcessConfig is the top-level configuration a collaborator builds
// (from TOML, flags, or by hand) and hands to the runtime context's
// bring-up sequence.
type ProcessConfig struct {
	Name string

	PrimaryCore int
	Cores       []int
	Strict      bool // see spec.md §4.7 step 5: strict vs lax core-list reconciliation

	Secondary bool

	PoolSize  int
	CacheSize int

	Ports []PortConfig
	VDevs []NetSpecConfig
}

// DefaultProcessConfig returns a ProcessConfig populated with the same
// fallbacks config_reader.rs applies when a TOML key is absent.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		Name:        DefaultName,
		PrimaryCore: DefaultPrimaryCore,
		Secondary:   DefaultSecondary,
		PoolSize:    DefaultPoolSize,
		CacheSize:   DefaultCacheSize,
	}
}
