package dc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/entity"
)

type recordRepo struct {
	mu    sync.Mutex
	saves []*entity.RoomPersistSnapshot
	fails int
	gate  chan struct{}
}

func (r *recordRepo) Save(ctx context.Context, s *entity.RoomPersistSnapshot) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails > 0 {
		r.fails--
		return errors.New("db down")
	}
	r.saves = append(r.saves, s)
	return nil
}

func (r *recordRepo) Load(ctx context.Context, id entity.RoomID) (*entity.Archive, error) {
	return nil, errors.New("not used")
}

func (r *recordRepo) snapshot() []*entity.RoomPersistSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.RoomPersistSnapshot(nil), r.saves...)
}

func newRoom(t *testing.T) *entity.Room {
	t.Helper()
	f := domain.NewField(2, 2, nil)
	corner, _ := f.CellAt(domain.Position{X: 1, Y: 0})
	if _, err := f.AttachExit(corner, domain.Right); err != nil {
		t.Fatalf("AttachExit err=%v", err)
	}
	rules := domain.DefaultRules()
	rules.PlayersAmount = 1
	r, err := entity.NewRoom("dc1", "dc", "alice", rules, f, nil, time.Now())
	if err != nil {
		t.Fatalf("NewRoom err=%v", err)
	}
	return r
}

func turns(seqs ...int) []domain.TurnRecord {
	out := make([]domain.TurnRecord, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, domain.TurnRecord{Seq: s})
	}
	return out
}

func TestRoomDC_Close时刷出最后快照(t *testing.T) {
	repo := &recordRepo{}
	d := NewRoomDC(repo, time.Hour, nil)
	room := newRoom(t)
	d.Attach(room)
	if _, err := room.SetSpawn("alice", domain.Position{X: 0, Y: 0}, time.Now()); err != nil {
		t.Fatalf("SetSpawn err=%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	saves := repo.snapshot()
	if len(saves) != 1 {
		t.Fatalf("saves=%d want=1", len(saves))
	}
	if saves[0].Room.Status != entity.StatusRunning || len(saves[0].Turns) != 1 {
		t.Fatalf("snapshot=%+v", saves[0])
	}
	if d.IsDirty() {
		t.Fatalf("flush 之后不应再 dirty")
	}
}

func TestRoomDC_覆盖旧快照时合并回合(t *testing.T) {
	repo := &recordRepo{gate: make(chan struct{})}
	d := NewRoomDC(repo, time.Hour, nil)

	d.enqueueLatest(&entity.RoomPersistSnapshot{Version: 1, Room: entity.RoomSnapshot{ID: "x"}, Turns: turns(1)})
	// 写协程卡在第一次 Save 上，后两份快照在队列里合并
	time.Sleep(20 * time.Millisecond)
	d.enqueueLatest(&entity.RoomPersistSnapshot{Version: 2, Room: entity.RoomSnapshot{ID: "x"}, Turns: turns(2)})
	d.enqueueLatest(&entity.RoomPersistSnapshot{Version: 3, Room: entity.RoomSnapshot{ID: "x", Winner: "w"}, Turns: turns(3, 4)})
	close(repo.gate)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	saves := repo.snapshot()
	if len(saves) != 2 {
		t.Fatalf("saves=%d want=2", len(saves))
	}
	last := saves[1]
	if last.Version != 3 || last.Room.Winner != "w" {
		t.Fatalf("last=%+v", last)
	}
	if len(last.Turns) != 3 || last.Turns[0].Seq != 2 || last.Turns[2].Seq != 4 {
		t.Fatalf("merged turns=%+v", last.Turns)
	}
}

func TestRoomDC_写失败后重试(t *testing.T) {
	repo := &recordRepo{fails: 2}
	d := NewRoomDC(repo, time.Hour, nil)
	d.enqueueLatest(&entity.RoomPersistSnapshot{Version: 1, Room: entity.RoomSnapshot{ID: "y"}, Turns: turns(1)})

	deadline := time.Now().Add(2 * time.Second)
	for len(repo.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := repo.snapshot(); len(got) != 1 || len(got[0].Turns) != 1 {
		t.Fatalf("saves=%+v", got)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = d.Close(ctx)
}

func TestRoomDC_没有仓储(t *testing.T) {
	d := NewRoomDC(nil, 0, nil)
	if d.FlushEvery() != defaultFlushEvery {
		t.Fatalf("flushEvery=%v", d.FlushEvery())
	}
	d.Attach(newRoom(t))
	if err := d.Flush(context.Background()); !errors.Is(err, ErrRepoNil) {
		t.Fatalf("err=%v", err)
	}
}
