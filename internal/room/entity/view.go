package entity

import (
	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/maze/engine"
)

type GameData struct {
	IsEnded    bool                `json:"is_ended"`
	Turns      []domain.TurnRecord `json:"turns"`
	WinnerName string              `json:"winner_name"`
}

type TurnData struct {
	Player    string `json:"player"`
	Action    string `json:"action"`
	Direction string `json:"direction"`
	Response  string `json:"response"`
}

type TurnInfo struct {
	TurnData    TurnData            `json:"turn_data"`
	PlayersStat []domain.PlayerView `json:"players_stat"`
}

type AllowedView struct {
	AllowedAbilities engine.Abilities `json:"allowed_abilities"`
	IsActive         bool             `json:"is_active"`
	NextPlayerName   string           `json:"next_player_name"`
}

type JoinInfo struct {
	CurrentUser string       `json:"current_user"`
	Rules       domain.Rules `json:"rules"`
	GameData    GameData     `json:"game_data"`
}

type SpawnInfo struct {
	Field     domain.FieldView `json:"field"`
	SpawnInfo *domain.Position `json:"spawn_info,omitempty"`
}

type WinInfo struct {
	WinnerName string `json:"winner_name"`
}

type RoomView struct {
	ID            RoomID   `json:"id"`
	Name          string   `json:"name"`
	Creator       string   `json:"creator"`
	Status        Status   `json:"status"`
	PlayersAmount int      `json:"players_amount"`
	Members       []string `json:"members"`
}

// FieldReview 整张地图的复盘视图，含宝藏真假与出生点。
type FieldReview struct {
	Room RoomView `json:"room"`
	engine.Snapshot
	SpawnPoints map[string]domain.Position `json:"spawn_points"`
}

func NewTurnInfo(rec domain.TurnRecord, stat []domain.PlayerView) TurnInfo {
	return TurnInfo{
		TurnData: TurnData{
			Player:    rec.Player,
			Action:    string(rec.Action),
			Direction: rec.Direction,
			Response:  rec.Response,
		},
		PlayersStat: stat,
	}
}

func (r *Room) View() RoomView {
	return RoomView{
		ID:            r.id,
		Name:          r.name,
		Creator:       r.creator,
		Status:        r.status,
		PlayersAmount: r.state.Rules.PlayersAmount,
		Members:       r.Members(),
	}
}

func (r *Room) GameData() GameData {
	return GameData{
		IsEnded:    r.status == StatusEnded,
		Turns:      append([]domain.TurnRecord{}, r.state.History...),
		WinnerName: r.state.Winner,
	}
}

func (r *Room) PlayersStat() []domain.PlayerView {
	return r.state.PlayersStat()
}

// Allowed 玩家的可用动作；非当前行动玩家全部为 false。
func (r *Room) Allowed(player string) (AllowedView, error) {
	ab, err := engine.Allowed(r.state, player)
	if err != nil {
		return AllowedView{}, err
	}
	v := AllowedView{AllowedAbilities: ab}
	if p, ok := r.state.ActivePlayer(); ok {
		v.NextPlayerName = p.Name
		v.IsActive = p.Name == player
	}
	return v, nil
}

func (r *Room) JoinInfo(player string) JoinInfo {
	return JoinInfo{
		CurrentUser: player,
		Rules:       r.Rules(),
		GameData:    r.GameData(),
	}
}

func (r *Room) SpawnInfo(player string) SpawnInfo {
	v := SpawnInfo{Field: r.state.Field.View()}
	if pos, ok := r.spawns[player]; ok {
		v.SpawnInfo = &pos
	}
	return v
}

func (r *Room) Review() FieldReview {
	v := FieldReview{
		Room:        r.View(),
		Snapshot:    r.state.Snapshot(),
		SpawnPoints: make(map[string]domain.Position, len(r.state.Players)),
	}
	for name, pos := range r.spawns {
		v.SpawnPoints[name] = pos
	}
	return v
}
