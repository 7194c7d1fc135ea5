package model

import (
	"encoding/json"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/entity"
)

// Room 房间行；规则与名单以 JSON 文本存放。
type Room struct {
	ID        string    `gorm:"column:id;type:varchar(32);primaryKey;not null;" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;" json:"name"`
	Creator   string    `gorm:"column:creator;type:varchar(64);not null;" json:"creator"`
	Status    string    `gorm:"column:status;type:varchar(16);comment:created/running/ended;not null;index;" json:"status"`
	Winner    string    `gorm:"column:winner;type:varchar(64);not null;default:'';" json:"winner"`
	Rules     string    `gorm:"column:rules;type:text;comment:规则JSON;not null;" json:"rules"`
	Players   string    `gorm:"column:players;type:text;comment:名单JSON;not null;" json:"players"`
	Round     int       `gorm:"column:round;type:int UNSIGNED;not null;default:0;" json:"round"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;" json:"updated_at"`
}

func (m *Room) TableName() string {
	return "maze_room"
}

// Turn 回合记录，(room_id, seq) 唯一。
type Turn struct {
	RoomID    string    `gorm:"column:room_id;type:varchar(32);primaryKey;not null;" json:"room_id"`
	Seq       int       `gorm:"column:seq;type:int UNSIGNED;primaryKey;not null;" json:"seq"`
	Player    string    `gorm:"column:player;type:varchar(64);not null;" json:"player"`
	Action    string    `gorm:"column:action;type:varchar(32);not null;" json:"action"`
	Direction string    `gorm:"column:direction;type:varchar(16);not null;default:'';" json:"direction"`
	Response  string    `gorm:"column:response;type:text;not null;" json:"response"`
	At        time.Time `gorm:"column:at;type:datetime(3);not null;" json:"at"`
}

func (m *Turn) TableName() string {
	return "maze_turn"
}

func RoomFromSnapshot(s entity.RoomSnapshot) (*Room, error) {
	rules, err := json.Marshal(s.Rules)
	if err != nil {
		return nil, err
	}
	players, err := json.Marshal(s.Players)
	if err != nil {
		return nil, err
	}
	return &Room{
		ID:        s.ID,
		Name:      s.Name,
		Creator:   s.Creator,
		Status:    s.Status.String(),
		Winner:    s.Winner,
		Rules:     string(rules),
		Players:   string(players),
		Round:     s.Round,
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}, nil
}

func (m *Room) ToSnapshot() (entity.RoomSnapshot, error) {
	status, err := entity.ParseStatus(m.Status)
	if err != nil {
		return entity.RoomSnapshot{}, err
	}
	s := entity.RoomSnapshot{
		ID:        m.ID,
		Name:      m.Name,
		Creator:   m.Creator,
		Status:    status,
		Winner:    m.Winner,
		Round:     m.Round,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(m.Rules), &s.Rules); err != nil {
		return entity.RoomSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(m.Players), &s.Players); err != nil {
		return entity.RoomSnapshot{}, err
	}
	return s, nil
}

func TurnsFromRecords(roomID string, recs []domain.TurnRecord) []Turn {
	out := make([]Turn, 0, len(recs))
	for _, r := range recs {
		out = append(out, Turn{
			RoomID:    roomID,
			Seq:       r.Seq,
			Player:    r.Player,
			Action:    string(r.Action),
			Direction: r.Direction,
			Response:  r.Response,
			At:        r.At.UTC(),
		})
	}
	return out
}

func (m *Turn) ToRecord() domain.TurnRecord {
	return domain.TurnRecord{
		Seq:       m.Seq,
		Player:    m.Player,
		Action:    domain.Action(m.Action),
		Direction: m.Direction,
		Response:  m.Response,
		At:        m.At,
	}
}
