package dc

import (
	"context"
	"errors"
	"sync"
	"time"

	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
	"Labyrinth/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	defaultFlushEvery = 2000 * time.Millisecond
	saveTimeout       = 5 * time.Second
	retryBackoff      = 200 * time.Millisecond
)

var ErrRepoNil = errors.New("room repository is nil")

// RoomDC 房间的异步落库通道：actor 只负责生成快照，写库在独立协程里完成。
//
// 待写快照只保留最新一份；被覆盖的旧快照里的回合会并到新快照前面，不会丢。
type RoomDC struct {
	repo       port.RoomRepository
	entity     *entity.Room
	flushEvery time.Duration
	log        logx.Logger

	mu      sync.Mutex
	pending *entity.RoomPersistSnapshot
	version uint64
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewRoomDC(repo port.RoomRepository, flushEvery time.Duration, log logx.Logger) *RoomDC {
	if flushEvery <= 0 {
		flushEvery = defaultFlushEvery
	}
	d := &RoomDC{
		repo:       repo,
		flushEvery: flushEvery,
		log:        logx.Or(log),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Attach 绑定房间实体，房间由创建请求直接构造，不从仓储加载。
func (d *RoomDC) Attach(room *entity.Room) {
	d.entity = room
}

func (d *RoomDC) Flush(ctx context.Context) error {
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return ErrRepoNil
	}
	s, ok := d.buildNextSnapshot()
	if !ok {
		return nil
	}
	d.enqueueLatest(s)
	return nil
}

func (d *RoomDC) IsDirty() bool {
	if d.entity == nil {
		return false
	}
	return d.entity.Dirty()
}

func (d *RoomDC) Entity() *entity.Room {
	return d.entity
}

func (d *RoomDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Close 刷出最后一份快照并等待写协程退出。
func (d *RoomDC) Close(ctx context.Context) error {
	_ = d.Flush(ctx)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *RoomDC) buildNextSnapshot() (*entity.RoomPersistSnapshot, bool) {
	if d.entity == nil {
		return nil, false
	}
	d.mu.Lock()
	d.version++
	version := d.version
	d.mu.Unlock()

	s, ok := d.entity.BuildPersistSnapshot(version)
	if !ok {
		return nil, false
	}
	d.entity.ClearDirty()
	return s, true
}

func (d *RoomDC) enqueueLatest(s *entity.RoomPersistSnapshot) {
	if s == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.putLocked(s)
	d.mu.Unlock()

	d.signal()
}

// putLocked 新快照覆盖旧快照，旧快照的回合拼在前面。
func (d *RoomDC) putLocked(s *entity.RoomPersistSnapshot) {
	switch {
	case d.pending == nil:
		d.pending = s
	case d.pending.Version < s.Version:
		s.Merge(d.pending)
		d.pending = s
	default:
		d.pending.Merge(s)
	}
}

func (d *RoomDC) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *RoomDC) popPending() *entity.RoomPersistSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.pending
	d.pending = nil
	return s
}

// requeueOnError 写失败的快照放回队列；关闭后不再重试。
func (d *RoomDC) requeueOnError(s *entity.RoomPersistSnapshot) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.putLocked(s)
	d.mu.Unlock()

	d.signal()
	return true
}

func (d *RoomDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *RoomDC) consumePending() {
	for {
		s := d.popPending()
		if s == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := d.repo.Save(ctx, s)
		cancel()
		if err == nil {
			continue
		}
		d.logSaveErr(s, err)
		if !d.requeueOnError(s) {
			return
		}
		time.Sleep(retryBackoff)
	}
}

func (d *RoomDC) logSaveErr(s *entity.RoomPersistSnapshot, err error) {
	d.log.Error("room snapshot save failed",
		zap.String("room_id", s.Room.ID),
		zap.Uint64("version", s.Version),
		zap.Int("turns", len(s.Turns)),
		zap.Error(err),
	)
}
