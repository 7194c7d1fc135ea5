package generator

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// stageSeed 每个生成阶段使用独立的子随机流，
// 某一阶段多消耗随机数不会影响其它阶段的结果。
func stageSeed(seed int64, stage string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(stage))
	sum := h.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func stageRand(seed int64, stage string) *rand.Rand {
	return rand.New(rand.NewSource(stageSeed(seed, stage)))
}
