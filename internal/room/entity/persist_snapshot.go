package entity

import (
	"time"

	"Labyrinth/internal/maze/domain"
)

// RoomSnapshot 房间行，规则里带着种子，地图可以据此重新生成。
type RoomSnapshot struct {
	ID        RoomID
	Name      string
	Creator   string
	Status    Status
	Winner    string
	Rules     domain.Rules
	Players   []string
	Round     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RoomPersistSnapshot struct {
	Version uint64
	Room    RoomSnapshot
	// Turns 追加写入，按 seq 升序；仓储按 (room_id, seq) 幂等。
	Turns []domain.TurnRecord
}

// Merge 合并被覆盖的旧快照：房间行取新的，回合按顺序拼接。
func (s *RoomPersistSnapshot) Merge(older *RoomPersistSnapshot) {
	if older == nil || len(older.Turns) == 0 {
		return
	}
	turns := make([]domain.TurnRecord, 0, len(older.Turns)+len(s.Turns))
	turns = append(turns, older.Turns...)
	turns = append(turns, s.Turns...)
	s.Turns = turns
}

// Archive 已落库房间的只读视图。
type Archive struct {
	Room  RoomSnapshot
	Turns []domain.TurnRecord
}

func (a *Archive) GameData() GameData {
	return GameData{
		IsEnded:    a.Room.Status == StatusEnded,
		Turns:      append([]domain.TurnRecord{}, a.Turns...),
		WinnerName: a.Room.Winner,
	}
}
