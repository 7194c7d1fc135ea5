package utils

import "testing"

func TestRandSeq(t *testing.T) {
	a, b := RandSeq(16), RandSeq(16)
	if len(a) != 16 || len(b) != 16 {
		t.Fatalf("长度错误 a=%q b=%q", a, b)
	}
	if a == b {
		t.Fatalf("两次生成不应相同")
	}
}

func TestSnowflake_单调递增(t *testing.T) {
	s, err := NewSnowflake(3)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	last := int64(0)
	for i := 0; i < 5000; i++ {
		id := s.NextID()
		if id <= last {
			t.Fatalf("id 非递增 last=%d id=%d", last, id)
		}
		last = id
	}
	if _, err := NewSnowflake(maxNodeID + 1); err == nil {
		t.Fatalf("node id 越界应报错")
	}
}

func TestSnowflake_时钟回拨与序号用尽(t *testing.T) {
	s, _ := NewSnowflake(1)
	clock := []int64{idEpoch + 10, idEpoch + 5}
	s.now = func() int64 {
		v := clock[0]
		if len(clock) > 1 {
			clock = clock[1:]
		}
		return v
	}
	a := s.NextID()
	b := s.NextID()
	if b <= a {
		t.Fatalf("回拨后 id 不应变小 a=%d b=%d", a, b)
	}

	ms := int64(idEpoch + 100)
	s2, _ := NewSnowflake(2)
	s2.now = func() int64 { return ms }
	first := s2.NextID()
	for i := 0; i < seqMask; i++ {
		s2.NextID()
	}
	calls := 0
	s2.now = func() int64 {
		calls++
		if calls > 2 {
			return ms + 1
		}
		return ms
	}
	next := s2.NextID()
	if next <= first || next>>(nodeBits+seqBits) != 101 {
		t.Fatalf("序号用尽应进入下一毫秒 next=%d", next)
	}
}

func TestNextRoomID(t *testing.T) {
	a, err := NextRoomID()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	b, _ := NextRoomID()
	if a == "" || a == b {
		t.Fatalf("房间 id 应非空且唯一 a=%q b=%q", a, b)
	}
}
