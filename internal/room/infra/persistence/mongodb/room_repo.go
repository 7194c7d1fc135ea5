package mongodb

import (
	"context"
	"errors"

	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/room/errs"
	"Labyrinth/internal/room/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	roomCollectionName = "maze_room"
	turnCollectionName = "maze_turn"
)

type RoomRepository struct {
	rooms *mongo.Collection
	turns *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{
		rooms: db.Collection(roomCollectionName),
		turns: db.Collection(turnCollectionName),
	}
}

// EnsureIndexes 回合按房间顺序读取。
func (r *RoomRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.turns.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "seq", Value: 1}},
	})
	return err
}

const (
	OpSaveRoom = "repo.room.mongo.Save"
	OpLoadRoom = "repo.room.mongo.Load"
)

func (r *RoomRepository) Save(ctx context.Context, s *entity.RoomPersistSnapshot) error {
	if s == nil {
		return nil
	}
	if r == nil || r.rooms == nil {
		return errors.New("mongodb room collection is nil")
	}

	doc := model.RoomSnapshotToDoc(s.Room)
	_, err := r.rooms.ReplaceOne(
		ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errs.Wrap(OpSaveRoom, errs.KindInfra, err, map[string]any{"room_id": doc.ID})
	}
	if len(s.Turns) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(s.Turns))
	for _, t := range s.Turns {
		td := model.TurnDoc{ID: model.TurnDocID(doc.ID, t.Seq), RoomID: doc.ID, TurnRecord: t}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": td.ID}).
			SetReplacement(td).
			SetUpsert(true))
	}
	if _, err := r.turns.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return errs.Wrap(OpSaveRoom, errs.KindInfra, err, map[string]any{
			"room_id": doc.ID,
			"turns":   len(s.Turns),
		})
	}
	return nil
}

func (r *RoomRepository) Load(ctx context.Context, roomID entity.RoomID) (*entity.Archive, error) {
	if r == nil || r.rooms == nil {
		return nil, errors.New("mongodb room collection is nil")
	}

	var doc model.RoomDoc
	err := r.rooms.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	room, err := model.RoomDocToSnapshot(doc)
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindCodec, err, map[string]any{"room_id": roomID})
	}

	cur, err := r.turns.Find(ctx, bson.M{"room_id": roomID}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	var turns []model.TurnDoc
	if err := cur.All(ctx, &turns); err != nil {
		return nil, errs.Wrap(OpLoadRoom, errs.KindInfra, err, map[string]any{"room_id": roomID})
	}
	a := &entity.Archive{Room: room}
	for _, t := range turns {
		a.Turns = append(a.Turns, t.TurnRecord)
	}
	return a, nil
}

var _ port.RoomRepository = (*RoomRepository)(nil)
