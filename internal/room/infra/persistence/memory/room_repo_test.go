package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
)

func TestRoomRepository_回合幂等且有序(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()
	rec := func(seq int, resp string) domain.TurnRecord {
		return domain.TurnRecord{Seq: seq, Player: "alice", Action: domain.ActionSkip, Response: resp, At: time.Now()}
	}
	s := &entity.RoomPersistSnapshot{
		Version: 1,
		Room:    entity.RoomSnapshot{ID: "m1", Status: entity.StatusRunning, Players: []string{"alice"}},
		Turns:   []domain.TurnRecord{rec(2, "b"), rec(1, "a")},
	}
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	s2 := &entity.RoomPersistSnapshot{
		Version: 2,
		Room:    entity.RoomSnapshot{ID: "m1", Status: entity.StatusEnded, Players: []string{"alice"}},
		Turns:   []domain.TurnRecord{rec(2, "changed"), rec(3, "c")},
	}
	if err := repo.Save(ctx, s2); err != nil {
		t.Fatalf("Save err=%v", err)
	}

	a, err := repo.Load(ctx, "m1")
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if a.Room.Status != entity.StatusEnded {
		t.Fatalf("room=%+v", a.Room)
	}
	if len(a.Turns) != 3 || a.Turns[1].Response != "b" {
		t.Fatalf("turns=%+v", a.Turns)
	}
	if _, err := repo.Load(ctx, "none"); !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}
