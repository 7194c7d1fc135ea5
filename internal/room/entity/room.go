package entity

import (
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/maze/engine"
)

type RoomID = string

// Room 房间聚合：生命周期状态机加上一局游戏的权威状态。
//
// 只允许在房间 actor 内部访问，不做并发保护。
type Room struct {
	id        RoomID
	name      string
	creator   string
	status    Status
	state     *engine.State
	createdAt time.Time
	updatedAt time.Time

	// spawns 开局前选定的出生点，复盘用。
	spawns map[string]domain.Position

	dirty bool
	// flushed 已经进入持久化快照的回合数。
	flushed int
}

// NewRoom 创建房间，创建者自动成为第一个玩家。
func NewRoom(id RoomID, name, creator string, rules domain.Rules, field *domain.Field, treasures []domain.Treasure, now time.Time) (*Room, error) {
	if err := domain.CheckRoomName(name); err != nil {
		return nil, err
	}
	if err := domain.CheckPlayerName(creator); err != nil {
		return nil, err
	}
	r := &Room{
		id:        id,
		name:      name,
		creator:   creator,
		status:    StatusCreated,
		state:     engine.NewState(field, treasures, rules),
		createdAt: now,
		updatedAt: now,
		spawns:    make(map[string]domain.Position),
		dirty:     true,
	}
	if err := r.state.AddPlayer(creator); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Room) ID() RoomID {
	return r.id
}

func (r *Room) Name() string {
	return r.name
}

func (r *Room) Creator() string {
	return r.creator
}

func (r *Room) Status() Status {
	return r.status
}

func (r *Room) Rules() domain.Rules {
	return r.state.Rules.Clone()
}

// State 只读访问，调用方不得修改。
func (r *Room) State() *engine.State {
	return r.state
}

func (r *Room) Members() []string {
	out := make([]string, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		out = append(out, p.Name)
	}
	return out
}

func (r *Room) IsMember(player string) bool {
	_, _, ok := r.state.Player(player)
	return ok
}

func (r *Room) Winner() string {
	return r.state.Winner
}

func (r *Room) full() bool {
	return len(r.state.Players) >= r.state.Rules.PlayersAmount
}

func (r *Room) transition(to Status, now time.Time) error {
	if !r.status.CanTransition(to) {
		return ErrRoomStateConflict.WithReason(ReasonIllegalTransition).
			WithData("from", r.status.String()).WithData("to", to.String())
	}
	r.status = to
	r.touch(now)
	return nil
}

func (r *Room) touch(now time.Time) {
	r.updatedAt = now
	r.dirty = true
}

// Join 等待阶段加入房间；已经在名单里视为成功。
func (r *Room) Join(player string, now time.Time) error {
	if err := domain.CheckPlayerName(player); err != nil {
		return err
	}
	if r.IsMember(player) {
		return nil
	}
	if r.status != StatusCreated {
		return ErrRoomStateConflict.WithReason(ReasonNotWaiting).WithData("status", r.status.String())
	}
	if r.full() {
		return ErrRoomStateConflict.WithReason(domain.ReasonRosterFull).
			WithData("players_amount", r.state.Rules.PlayersAmount)
	}
	if err := r.state.AddPlayer(player); err != nil {
		return err
	}
	r.touch(now)
	return nil
}

// Leave 等待阶段离开房间。创建者离开时由下一个玩家接手；返回房间是否已空。
func (r *Room) Leave(player string, now time.Time) (bool, error) {
	if r.status != StatusCreated {
		return false, ErrRoomStateConflict.WithReason(ReasonNotWaiting).WithData("status", r.status.String())
	}
	if !r.state.RemovePlayer(player) {
		return false, domain.ErrPermissionDenied.WithReason(domain.ReasonUnknownPlayer).WithData("player", player)
	}
	delete(r.spawns, player)
	if len(r.state.Players) == 0 {
		r.touch(now)
		return true, nil
	}
	if player == r.creator {
		r.creator = r.state.Players[0].Name
	}
	r.touch(now)
	return false, nil
}

// SetSpawn 选择出生点。名单满员且全部选好后自动开局，返回入场播报。
func (r *Room) SetSpawn(player string, pos domain.Position, now time.Time) ([]domain.TurnRecord, error) {
	if r.status != StatusCreated {
		return nil, ErrRoomStateConflict.WithReason(ReasonNotWaiting).WithData("status", r.status.String())
	}
	if err := r.state.Spawn(player, pos); err != nil {
		return nil, err
	}
	r.spawns[player] = pos
	r.touch(now)
	if !r.full() || !r.state.AllSpawned() {
		return nil, nil
	}
	records, err := r.state.Start(now)
	if err != nil {
		return nil, err
	}
	if err := r.transition(StatusRunning, now); err != nil {
		return nil, err
	}
	return records, nil
}

// Act 执行当前行动玩家的动作。被拒绝的动作不改变房间状态。
func (r *Room) Act(player string, action domain.Action, dir *domain.Direction, now time.Time) (domain.TurnRecord, error) {
	switch r.status {
	case StatusCreated:
		return domain.TurnRecord{}, domain.ErrPermissionDenied.WithReason(domain.ReasonNotStarted)
	case StatusEnded:
		return domain.TurnRecord{}, domain.ErrPermissionDenied.WithReason(domain.ReasonGameOver)
	}
	next, rec, err := engine.Resolve(r.state, player, action, dir, now)
	if err != nil {
		return domain.TurnRecord{}, err
	}
	r.state = next
	r.touch(now)
	if next.Over {
		if err := r.transition(StatusEnded, now); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func (r *Room) Dirty() bool {
	return r != nil && r.dirty
}

func (r *Room) ClearDirty() {
	if r == nil {
		return
	}
	r.dirty = false
}

// BuildPersistSnapshot 生成落库快照，只携带上次快照之后新增的回合。
func (r *Room) BuildPersistSnapshot(version uint64) (*RoomPersistSnapshot, bool) {
	if r == nil || !r.dirty {
		return nil, false
	}
	history := r.state.History
	s := &RoomPersistSnapshot{
		Version: version,
		Room:    r.Snapshot(),
		Turns:   append([]domain.TurnRecord(nil), history[r.flushed:]...),
	}
	r.flushed = len(history)
	return s, true
}

func (r *Room) Snapshot() RoomSnapshot {
	return RoomSnapshot{
		ID:        r.id,
		Name:      r.name,
		Creator:   r.creator,
		Status:    r.status,
		Winner:    r.state.Winner,
		Rules:     r.state.Rules.Clone(),
		Players:   r.Members(),
		Round:     r.state.Round,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}
