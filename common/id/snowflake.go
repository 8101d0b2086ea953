package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Server and worker processes must use different node IDs.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 ID, unique across nodes.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns New() in its base-10 string form, used for notification event ids.
func NewString() string {
	return node.Generate().String()
}
