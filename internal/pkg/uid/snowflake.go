package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 ids safe to use across replicas.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from a
// stable machine identity (machine-id or hostname), falling back to random
// bytes when neither is available.
func NewSnowflake() (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeNumber())
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique int64 id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func nodeNumber() int64 {
	src := ""

	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		src = strings.TrimSpace(string(b))
	}
	if src == "" {
		if h, err := os.Hostname(); err == nil {
			src = strings.TrimSpace(h)
		}
	}
	if src == "" {
		var b [8]byte
		if _, err := rand.Read(b[:]); err == nil {
			src = string(b[:])
		}
	}

	sum := sha256.Sum256([]byte(src))

	// snowflake node numbers are 10 bits
	return int64(sum[0])<<2 | int64(sum[1])>>6
}
