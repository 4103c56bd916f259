// Package constants holds the small set of fixed sizes the runtime is built
// around: batch capacity, header stack depth, mempool metadata slots.
package constants

const (
	// MaxBatchSize is the number of MBufs a single act() call moves through
	// the pipeline. Batches stay bounded so that one act() call never starves
	// the scheduler's round-robin.
	MaxBatchSize = 32

	// MaxHeaderStackDepth bounds a PDU's parsed header stack (Mac, IPv4 or
	// Arp, TCP or UDP).
	MaxHeaderStackDepth = 5

	// MetadataSlots is the number of machine-word metadata slots trailing
	// every MBuf, reserved for framework and operator use (add_metadata_mut).
	MetadataSlots = 16

	// DefaultMbufDataroom is the default payload capacity of a pool's MBufs,
	// sized for a full standard (non-jumbo) Ethernet frame.
	DefaultMbufDataroom = 2048

	// DefaultMempoolCacheSize is the default per-core allocation burst
	// pulled from a pool's sharded free lists.
	DefaultMempoolCacheSize = 256

	// DefaultControlChannelDepth is the bounded blocking control channel's
	// default buffer size (spec: "a bounded blocking channel").
	DefaultControlChannelDepth = 64
)
