package model

import (
	"fmt"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/entity"
)

// RoomDoc mongodb 房间文档。
type RoomDoc struct {
	ID        string       `bson:"_id"`
	Name      string       `bson:"name"`
	Creator   string       `bson:"creator"`
	Status    string       `bson:"status"`
	Winner    string       `bson:"winner"`
	Rules     domain.Rules `bson:"rules"`
	Players   []string     `bson:"players"`
	Round     int          `bson:"round"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// TurnDoc 回合文档，_id 为 room_id:seq。
type TurnDoc struct {
	ID                string `bson:"_id"`
	RoomID            string `bson:"room_id"`
	domain.TurnRecord `bson:",inline"`
}

func TurnDocID(roomID string, seq int) string {
	return fmt.Sprintf("%s:%d", roomID, seq)
}

func RoomSnapshotToDoc(s entity.RoomSnapshot) RoomDoc {
	return RoomDoc{
		ID:        s.ID,
		Name:      s.Name,
		Creator:   s.Creator,
		Status:    s.Status.String(),
		Winner:    s.Winner,
		Rules:     s.Rules.Clone(),
		Players:   append([]string(nil), s.Players...),
		Round:     s.Round,
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
}

func RoomDocToSnapshot(d RoomDoc) (entity.RoomSnapshot, error) {
	status, err := entity.ParseStatus(d.Status)
	if err != nil {
		return entity.RoomSnapshot{}, err
	}
	return entity.RoomSnapshot{
		ID:        d.ID,
		Name:      d.Name,
		Creator:   d.Creator,
		Status:    status,
		Winner:    d.Winner,
		Rules:     d.Rules,
		Players:   d.Players,
		Round:     d.Round,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}
