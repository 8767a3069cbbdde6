package cache

import "github.com/nautilusmesh/xdscontrol/ads"

// NodeHash maps a client's Node identity to the group whose Snapshot it
// should receive. Clients that hash to the same group see the same
// configuration. The zero value of the string result is a valid group.
type NodeHash interface {
	ID(node *ads.Node) string
}

// IDHash is the default NodeHash: the group is the node's ID field verbatim.
// It is almost always what a caller wants unless clients within the same
// logical group report different IDs (e.g. per-replica hostnames), in which
// case a custom NodeHash should derive the group from node.Cluster or a
// metadata field instead.
type IDHash struct{}

// ID returns node.GetId(), or "" if node is nil.
func (IDHash) ID(node *ads.Node) string {
	return node.GetId()
}

var _ NodeHash = IDHash{}
