package matrix

import (
	"math/bits"

	"github.com/edp1096/dcsolve/internal/consts"
)

// NoIndex marks a node without a row in the reduced system.
const NoIndex = -1

// IndexMap translates between node identifiers and reduced indices.
type IndexMap struct {
	NodeToIndex [consts.MaxNodes]int8
	IndexToNode [consts.MaxNodes - 1]uint8
	N           int
}

// NewIndexMap numbers the non-ground nodes set in active in ascending
// order, starting the scan at node 1.
func NewIndexMap(active uint32) IndexMap {
	var m IndexMap
	for i := range m.NodeToIndex {
		m.NodeToIndex[i] = NoIndex
	}
	mask := active &^ 1 & (1<<consts.MaxNodes - 1)
	for mask != 0 {
		node := bits.TrailingZeros32(mask)
		mask &= mask - 1
		m.NodeToIndex[node] = int8(m.N)
		m.IndexToNode[m.N] = uint8(node)
		m.N++
	}
	return m
}

// Index returns the reduced index of node, or NoIndex for ground and
// inactive nodes.
func (m *IndexMap) Index(node uint8) int {
	if int(node) >= len(m.NodeToIndex) {
		return NoIndex
	}
	return int(m.NodeToIndex[node])
}
