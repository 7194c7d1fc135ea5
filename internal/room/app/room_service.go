package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/maze/engine"
	"Labyrinth/internal/maze/generator"
	"Labyrinth/internal/room/app/model"
	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/shared/actor/messages"
	"Labyrinth/internal/shared/utils"
	"Labyrinth/modules/kit/errx"
	"Labyrinth/modules/kit/logx"

	"go.uber.org/zap"
)

type RoomService struct {
	rooms    port.RoomRuntime
	repo     port.RoomRepository
	tokens   port.TokenIssuer
	defaults domain.Rules
	log      logx.Logger

	nextID func() (string, error)
	now    func() time.Time
}

func NewRoomService(rooms port.RoomRuntime, repo port.RoomRepository, tokens port.TokenIssuer, defaults domain.Rules, log logx.Logger) *RoomService {
	return &RoomService{
		rooms:    rooms,
		repo:     repo,
		tokens:   tokens,
		defaults: defaults.Clone(),
		log:      logx.Or(log),
		nextID:   utils.NextRoomID,
		now:      time.Now,
	}
}

// DefaultRules 创建房间时未指定的规则项取这里的值。
func (s *RoomService) DefaultRules() domain.Rules {
	return s.defaults.Clone()
}

// CreateRoom 校验规则并生成地图，创建者拿到第一张凭证。
// 种子为 0 时随机取一个并写回规则，保证同一房间的地图可以复现。
func (s *RoomService) CreateRoom(ctx context.Context, req model.CreateRoomReq) (*model.CreateRoomResp, error) {
	name := strings.TrimSpace(req.Name)
	creator := strings.TrimSpace(req.Creator)
	if name == "" || creator == "" {
		return nil, ErrReqParam.WithReason(ReasonEmptyName)
	}
	if err := domain.CheckRoomName(name); err != nil {
		return nil, err
	}
	if err := domain.CheckPlayerName(creator); err != nil {
		return nil, err
	}
	rules := s.DefaultRules()
	if req.Rules != nil {
		rules = req.Rules.Clone()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rules.Generator.Seed == 0 {
		rules.Generator.Seed = s.now().UnixNano()
	}
	g := rules.Generator
	field, treasures, err := generator.Generate(g.Seed, g.Rows, g.Cols, g)
	if err != nil {
		s.logWarn(ctx, "maze generation failed", err, zap.Int64("seed", g.Seed))
		return nil, err
	}

	id, err := s.nextID()
	if err != nil {
		return nil, ErrInternalServer.WithReason(ReasonIDIssue).WithCause(err)
	}
	msg := &messages.HRCreateRoom{
		RoomBaseMessage: messages.RoomBaseMessage{RoomId: id, Player: creator},
		Name:            name,
		Rules:           rules,
		Field:           field,
		Treasures:       treasures,
	}
	if _, err := ask[entity.RoomView](ctx, s, msg); err != nil {
		return nil, err
	}
	token, err := s.award(id, creator)
	if err != nil {
		return nil, err
	}
	return &model.CreateRoomResp{ID: id, Name: name, Token: token}, nil
}

func (s *RoomService) JoinRoom(ctx context.Context, req model.JoinRoomReq) (*model.JoinRoomResp, error) {
	player := strings.TrimSpace(req.Player)
	if req.RoomID == "" || player == "" {
		return nil, ErrReqParam.WithReason(ReasonEmptyName)
	}
	if err := domain.CheckPlayerName(player); err != nil {
		return nil, err
	}
	msg := &messages.HRJoinRoom{RoomBaseMessage: messages.RoomBaseMessage{RoomId: req.RoomID, Player: player}}
	if _, err := ask[entity.RoomView](ctx, s, msg); err != nil {
		return nil, err
	}
	token, err := s.award(req.RoomID, player)
	if err != nil {
		return nil, err
	}
	return &model.JoinRoomResp{RoomID: req.RoomID, Player: player, Token: token}, nil
}

// Authenticate 校验房间凭证，RoomID 为空时以凭证里的房间为准。
func (s *RoomService) Authenticate(req model.EnterReq) (*model.Identity, error) {
	if s.tokens == nil {
		return nil, ErrUnavailable.WithReason(ReasonTokenInvalid)
	}
	room, player, err := s.tokens.Parse(req.Token)
	if err != nil {
		return nil, ErrSessionInvalid.WithReason(ReasonTokenInvalid).WithCause(err)
	}
	if req.RoomID != "" && req.RoomID != room {
		return nil, ErrSessionInvalid.WithReason(ReasonTokenMismatch).
			WithData("room_id", req.RoomID)
	}
	return &model.Identity{RoomID: room, Player: player}, nil
}

// Attach 连接绑定之后调用：房间广播 join，并给该玩家推送当前阶段需要的信息。
func (s *RoomService) Attach(ctx context.Context, id model.Identity) (entity.JoinInfo, error) {
	return ask[entity.JoinInfo](ctx, s, &messages.HRAttach{RoomBaseMessage: base(id.RoomID, id.Player)})
}

func (s *RoomService) Leave(ctx context.Context, id model.Identity) (messages.RHLeave, error) {
	return ask[messages.RHLeave](ctx, s, &messages.HRLeaveRoom{RoomBaseMessage: base(id.RoomID, id.Player)})
}

func (s *RoomService) SetSpawn(ctx context.Context, id model.Identity, pos domain.Position) (entity.SpawnInfo, error) {
	msg := &messages.HRSetSpawn{RoomBaseMessage: base(id.RoomID, id.Player), Pos: pos}
	return ask[entity.SpawnInfo](ctx, s, msg)
}

// Act 解析并提交一个动作；方向只对需要方向的动作生效。
func (s *RoomService) Act(ctx context.Context, id model.Identity, action, direction string) (entity.TurnInfo, error) {
	a, ok := domain.ParseAction(action)
	if !ok {
		return entity.TurnInfo{}, ErrInvalidAction.WithReason(domain.ReasonUnknownAction).WithData("action", action)
	}
	var dir *domain.Direction
	if direction != "" && a.NeedsDirection() {
		d, ok := domain.ParseDirection(direction)
		if !ok {
			return entity.TurnInfo{}, ErrInvalidAction.WithReason(ReasonBadDirection).WithData("direction", direction)
		}
		dir = &d
	}
	msg := &messages.HRAct{RoomBaseMessage: base(id.RoomID, id.Player), Action: a, Direction: dir}
	return ask[entity.TurnInfo](ctx, s, msg)
}

func (s *RoomService) Allowed(ctx context.Context, id model.Identity) (entity.AllowedView, error) {
	return ask[entity.AllowedView](ctx, s, &messages.HRAllowed{RoomBaseMessage: base(id.RoomID, id.Player)})
}

// GameData 房间不在内存时从归档读取。
func (s *RoomService) GameData(ctx context.Context, roomID string) (entity.GameData, error) {
	gd, err := ask[entity.GameData](ctx, s, &messages.HRGameData{RoomBaseMessage: base(roomID, "")})
	if !errors.Is(err, ErrRoomNotFound) {
		return gd, err
	}
	a, err := s.archive(ctx, roomID)
	if err != nil {
		return entity.GameData{}, err
	}
	return a.GameData(), nil
}

func (s *RoomService) PlayersStat(ctx context.Context, roomID string) ([]domain.PlayerView, error) {
	stat, err := ask[[]domain.PlayerView](ctx, s, &messages.HRPlayersStat{RoomBaseMessage: base(roomID, "")})
	if !errors.Is(err, ErrRoomNotFound) {
		return stat, err
	}
	if _, err := s.archive(ctx, roomID); err != nil {
		return nil, err
	}
	return nil, ErrRoomNotFound.WithReason(ReasonRoomArchived)
}

func (s *RoomService) RoomInfo(ctx context.Context, roomID string) (entity.RoomView, error) {
	return ask[entity.RoomView](ctx, s, &messages.HRRoomInfo{RoomBaseMessage: base(roomID, "")})
}

// FieldReview 整图复盘，含全部宝藏位置。对局结束后公开；进行中只对带凭证的创建者开放。
func (s *RoomService) FieldReview(ctx context.Context, req model.ReviewReq) (entity.FieldReview, error) {
	viewer := ""
	if req.Token != "" {
		id, err := s.Authenticate(model.EnterReq{RoomID: req.RoomID, Token: req.Token})
		if err != nil {
			return entity.FieldReview{}, err
		}
		viewer = id.Player
	}
	v, err := s.review(ctx, req.RoomID)
	if err != nil {
		return entity.FieldReview{}, err
	}
	if !v.IsEnded && (viewer == "" || viewer != v.Room.Creator) {
		return entity.FieldReview{}, ErrPermissionDenied.WithReason(ReasonReviewLocked).
			WithData("room_id", req.RoomID).WithData("viewer", viewer)
	}
	return v, nil
}

// review 归档房间按种子重新生成初始地图，回合记录取归档。
func (s *RoomService) review(ctx context.Context, roomID string) (entity.FieldReview, error) {
	v, err := ask[entity.FieldReview](ctx, s, &messages.HRFieldReview{RoomBaseMessage: base(roomID, "")})
	if !errors.Is(err, ErrRoomNotFound) {
		return v, err
	}
	a, err := s.archive(ctx, roomID)
	if err != nil {
		return entity.FieldReview{}, err
	}
	rules := a.Room.Rules
	g := rules.Generator
	field, treasures, err := generator.Generate(g.Seed, g.Rows, g.Cols, g)
	if err != nil {
		return entity.FieldReview{}, ErrInternalServer.WithReason(ReasonRoomArchived).WithCause(err)
	}
	snap := engine.NewState(field, treasures, rules).Snapshot()
	snap.Turns = a.Turns
	snap.Winner = a.Room.Winner
	snap.IsEnded = a.Room.Status == entity.StatusEnded
	return entity.FieldReview{
		Room: entity.RoomView{
			ID:            a.Room.ID,
			Name:          a.Room.Name,
			Creator:       a.Room.Creator,
			Status:        a.Room.Status,
			PlayersAmount: rules.PlayersAmount,
			Members:       a.Room.Players,
		},
		Snapshot:    snap,
		SpawnPoints: map[string]domain.Position{},
	}, nil
}

func (s *RoomService) archive(ctx context.Context, roomID string) (*entity.Archive, error) {
	if s.repo == nil {
		return nil, ErrRoomNotFound
	}
	a, err := s.repo.Load(ctx, roomID)
	if errors.Is(err, port.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, ErrUnavailable.WithReason(ReasonRepoFailed).WithCause(err)
	}
	return a, nil
}

func (s *RoomService) award(roomID, player string) (string, error) {
	if s.tokens == nil {
		return "", ErrUnavailable.WithReason(ReasonTokenIssue)
	}
	token, err := s.tokens.Award(roomID, player)
	if err != nil {
		return "", ErrInternalServer.WithReason(ReasonTokenIssue).WithCause(err)
	}
	return token, nil
}

func (s *RoomService) logWarn(ctx context.Context, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	s.log.WithContext(ctx).Warn(msg, fields...)
}

func base(roomID, player string) messages.RoomBaseMessage {
	return messages.RoomBaseMessage{RoomId: roomID, Player: player}
}

// ask 请求房间 actor 并断言应答类型；运行时故障统一包装成 ErrUnavailable。
func ask[T any](ctx context.Context, s *RoomService, msg messages.RoomMessage) (T, error) {
	var zero T
	if s.rooms == nil {
		return zero, ErrUnavailable.WithReason(ReasonRuntimeTimeout)
	}
	res, err := s.rooms.Ask(ctx, msg)
	if err != nil {
		return zero, wrapTechErr(err)
	}
	v, ok := res.(T)
	if !ok {
		return zero, ErrInternalServer.WithData("reply_type", fmt.Sprintf("%T", res))
	}
	return v, nil
}

// wrapTechErr 业务错误原样返回，其余视为运行时故障。
func wrapTechErr(err error) error {
	var e *errx.Error
	if errors.As(err, &e) {
		return err
	}
	return ErrUnavailable.WithReason(ReasonRuntimeTimeout).WithCause(err)
}
