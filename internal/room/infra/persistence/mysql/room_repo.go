package mysql

import (
	"context"
	"errors"

	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/room/errs"
	"Labyrinth/internal/room/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const turnBatchSize = 100

type RoomRepo struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) WithTx(tx *gorm.DB) *RoomRepo {
	return &RoomRepo{
		db: tx,
	}
}

// AutoMigrate 建表或补齐字段。
func (r *RoomRepo) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.Room{}, &model.Turn{})
}

const OpSaveRoom = "repo.room.Save"

func (r *RoomRepo) Save(ctx context.Context, s *entity.RoomPersistSnapshot) error {
	if s == nil {
		return nil
	}
	m, err := model.RoomFromSnapshot(s.Room)
	if err != nil {
		return errs.Wrap(OpSaveRoom, errs.KindCodec, err, map[string]any{"room_id": s.Room.ID})
	}
	turns := model.TurnsFromRecords(s.Room.ID, s.Turns)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)
		if err := txRepo.db.Save(m).Error; err != nil {
			return err
		}
		return txRepo.appendTurns(turns)
	})
	if err != nil {
		return errs.Wrap(OpSaveRoom, errs.KindInfra, err, map[string]any{
			"room_id": s.Room.ID,
			"version": s.Version,
		})
	}
	return nil
}

// appendTurns 已存在的 (room_id, seq) 直接跳过，重试写入是安全的。
func (r *RoomRepo) appendTurns(turns []model.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(turns, turnBatchSize).Error
}

const OpLoadRoom = "repo.room.Load"

func (r *RoomRepo) Load(ctx context.Context, roomID entity.RoomID) (*entity.Archive, error) {
	var m model.Room
	err := r.db.WithContext(ctx).Where("id = ?", roomID).First(&m).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, port.ErrNotFound
	default:
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	room, err := m.ToSnapshot()
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindCodec, err, map[string]any{"room_id": roomID})
	}

	var turns []model.Turn
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("seq ASC").Find(&turns).Error; err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	a := &entity.Archive{Room: room}
	for i := range turns {
		a.Turns = append(a.Turns, turns[i].ToRecord())
	}
	return a, nil
}

var _ port.RoomRepository = (*RoomRepo)(nil)
