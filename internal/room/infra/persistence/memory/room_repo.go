package memory

import (
	"context"
	"sort"
	"sync"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
)

// RoomRepository 进程内归档，单机开发与测试使用。
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[entity.RoomID]entity.RoomSnapshot
	turns map[entity.RoomID]map[int]domain.TurnRecord
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms: make(map[entity.RoomID]entity.RoomSnapshot),
		turns: make(map[entity.RoomID]map[int]domain.TurnRecord),
	}
}

func (r *RoomRepository) Save(ctx context.Context, s *entity.RoomPersistSnapshot) error {
	if s == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room := s.Room
	room.Players = append([]string(nil), room.Players...)
	room.Rules = room.Rules.Clone()
	r.rooms[room.ID] = room

	turns := r.turns[room.ID]
	if turns == nil {
		turns = make(map[int]domain.TurnRecord)
		r.turns[room.ID] = turns
	}
	for _, t := range s.Turns {
		if _, ok := turns[t.Seq]; !ok {
			turns[t.Seq] = t
		}
	}
	return nil
}

func (r *RoomRepository) Load(ctx context.Context, roomID entity.RoomID) (*entity.Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, port.ErrNotFound
	}
	turns := make([]domain.TurnRecord, 0, len(r.turns[roomID]))
	for _, t := range r.turns[roomID] {
		turns = append(turns, t)
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].Seq < turns[j].Seq })
	room.Players = append([]string(nil), room.Players...)
	return &entity.Archive{Room: room, Turns: turns}, nil
}

var _ port.RoomRepository = (*RoomRepository)(nil)
