package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 房间 id 布局：41 位毫秒时间 | 10 位节点 | 12 位序号。
const (
	idEpoch   = 1767225600000 // 2026-01-01 UTC，毫秒
	nodeBits  = 10
	seqBits   = 12
	maxNodeID = 1<<nodeBits - 1
	seqMask   = 1<<seqBits - 1

	nodeEnv = "LABYRINTH_NODE_ID"
)

type Snowflake struct {
	mu     sync.Mutex
	node   int64
	lastMs int64
	seq    int64
	now    func() int64
}

func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 || node > maxNodeID {
		return nil, fmt.Errorf("snowflake node id out of range: %d", node)
	}
	return &Snowflake{
		node: node,
		now:  func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// NextID 单调递增；时钟回拨时沿用上一次的时间戳，同一毫秒序号用尽则等下一毫秒。
func (s *Snowflake) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := max(s.now(), s.lastMs)
	if ms != s.lastMs {
		s.seq = 0
	} else if s.seq = (s.seq + 1) & seqMask; s.seq == 0 {
		for ms <= s.lastMs {
			ms = s.now()
		}
	}
	s.lastMs = ms
	return (ms-idEpoch)<<(nodeBits+seqBits) | s.node<<seqBits | s.seq
}

var defaultSnowflake = sync.OnceValues(func() (*Snowflake, error) {
	node := int64(1)
	if raw := strings.TrimSpace(os.Getenv(nodeEnv)); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", nodeEnv, err)
		}
		node = v
	}
	return NewSnowflake(node)
})

// NextRoomID 房间 id：雪花 id 的 36 进制串，短且按创建时间有序。
func NextRoomID() (string, error) {
	gen, err := defaultSnowflake()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(gen.NextID(), 36), nil
}
