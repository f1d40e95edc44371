package consts

const (
	MaxNodes = 20 // node identifiers live in [0, MaxNodes), addressable by a uint32 mask
	Ground   = 0  // reference node, fixed at zero potential
)

const (
	DefaultMemSize = 1 << 15 // Default backing buffer (bytes) used by the CLI
	MaxSweepPoints = 10000   // Upper bound of points generated by a DC sweep
)
