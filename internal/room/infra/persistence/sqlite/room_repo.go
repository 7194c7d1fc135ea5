package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/room/errs"
	"Labyrinth/internal/room/infra/persistence/model"
)

//go:embed schema.sql
var schemaSQL string

// RoomRepo 嵌入式 SQLite 归档；时间按毫秒整数存放。
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

const OpMigrate = "repo.room.sqlite.Migrate"

func (r *RoomRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return errs.Wrap(OpMigrate, errs.KindInfra, err, nil)
	}
	return nil
}

const (
	OpSaveRoom = "repo.room.sqlite.Save"
	OpLoadRoom = "repo.room.sqlite.Load"
)

func (r *RoomRepo) Save(ctx context.Context, s *entity.RoomPersistSnapshot) error {
	if s == nil {
		return nil
	}
	m, err := model.RoomFromSnapshot(s.Room)
	if err != nil {
		return errs.Wrap(OpSaveRoom, errs.KindCodec, err, map[string]any{"room_id": s.Room.ID})
	}
	if err := r.saveTx(ctx, m, model.TurnsFromRecords(m.ID, s.Turns)); err != nil {
		return errs.Wrap(OpSaveRoom, errs.KindInfra, err, map[string]any{
			"room_id": s.Room.ID,
			"version": s.Version,
		})
	}
	return nil
}

func (r *RoomRepo) saveTx(ctx context.Context, m *model.Room, turns []model.Turn) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO maze_room (id, name, creator, status, winner, rules, players, round, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   creator = excluded.creator,
		   status = excluded.status,
		   winner = excluded.winner,
		   rules = excluded.rules,
		   players = excluded.players,
		   round = excluded.round,
		   updated_at = excluded.updated_at`,
		m.ID, m.Name, m.Creator, m.Status, m.Winner, m.Rules, m.Players, m.Round,
		toMillis(m.CreatedAt), toMillis(m.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if len(turns) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT OR IGNORE INTO maze_turn (room_id, seq, player, action, direction, response, at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer stmt.Close()
		for _, t := range turns {
			if _, err = stmt.ExecContext(ctx, t.RoomID, t.Seq, t.Player, t.Action, t.Direction, t.Response, toMillis(t.At)); err != nil {
				return err
			}
		}
	}
	err = tx.Commit()
	return err
}

func (r *RoomRepo) Load(ctx context.Context, roomID entity.RoomID) (*entity.Archive, error) {
	var (
		m                  model.Room
		createdAt, updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, creator, status, winner, rules, players, round, created_at, updated_at
		 FROM maze_room WHERE id = ?`, roomID,
	).Scan(&m.ID, &m.Name, &m.Creator, &m.Status, &m.Winner, &m.Rules, &m.Players, &m.Round, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	m.CreatedAt, m.UpdatedAt = fromMillis(createdAt), fromMillis(updated)
	room, err := m.ToSnapshot()
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindCodec, err, map[string]any{"room_id": roomID})
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT room_id, seq, player, action, direction, response, at
		 FROM maze_turn WHERE room_id = ? ORDER BY seq ASC`, roomID)
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	defer rows.Close()

	a := &entity.Archive{Room: room}
	for rows.Next() {
		var (
			t  model.Turn
			at int64
		)
		if err := rows.Scan(&t.RoomID, &t.Seq, &t.Player, &t.Action, &t.Direction, &t.Response, &at); err != nil {
			return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
		}
		t.At = fromMillis(at)
		a.Turns = append(a.Turns, t.ToRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	return a, nil
}

var _ port.RoomRepository = (*RoomRepo)(nil)
