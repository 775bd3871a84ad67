package infrastructure

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kanbanApi/internal/modules/boards/application/port"
	"kanbanApi/internal/modules/boards/domain"
	"kanbanApi/internal/platform/mongodb"
	"kanbanApi/internal/shared/apperr"
)

var sortableFields = map[string]bool{"title": true, "label": true, "isStarred": true, "_id": true}

type MongoBoardRepository struct {
	coll *mongo.Collection
}

func NewMongoBoardRepository(db *mongo.Database) *MongoBoardRepository {
	return &MongoBoardRepository{coll: db.Collection(mongodb.BoardsCollection)}
}

func (r *MongoBoardRepository) Query(ctx context.Context, filter domain.BoardFilter) ([]domain.Board, error) {
	criteria := bson.M{}
	if txt := strings.TrimSpace(filter.Txt); txt != "" {
		re := mongodb.ContainsInsensitive(txt)
		criteria["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}

	opts := options.Find()
	if sortableFields[filter.SortField] {
		dir := 1
		if filter.SortDir < 0 {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: filter.SortField, Value: dir}})
	}
	if filter.PageIdx != nil && *filter.PageIdx >= 0 {
		opts.SetSkip(int64(*filter.PageIdx * domain.PageSize)).SetLimit(domain.PageSize)
	}

	cur, err := r.coll.Find(ctx, criteria, opts)
	if err != nil {
		return nil, apperr.Store("find boards", err)
	}
	var boards []domain.Board
	if err := cur.All(ctx, &boards); err != nil {
		return nil, apperr.Store("decode boards", err)
	}
	for i := range boards {
		boards[i].Normalize()
	}
	return boards, nil
}

func (r *MongoBoardRepository) Get(ctx context.Context, id string) (*domain.Board, error) {
	oid, err := mongodb.ObjectID("board", id)
	if err != nil {
		return nil, err
	}
	var board domain.Board
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&board); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("board", id)
		}
		return nil, apperr.Store("find board", err)
	}
	board.Normalize()
	return &board, nil
}

func (r *MongoBoardRepository) Insert(ctx context.Context, board *domain.Board) error {
	res, err := r.coll.InsertOne(ctx, board)
	if err != nil {
		return apperr.Store("insert board", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		board.ID = oid
	}
	board.Normalize()
	return nil
}

func (r *MongoBoardRepository) Replace(ctx context.Context, board *domain.Board) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": board.ID}, board)
	if err != nil {
		return apperr.Store("replace board", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("board", board.ID.Hex())
	}
	return nil
}

func (r *MongoBoardRepository) Delete(ctx context.Context, id string) error {
	oid, err := mongodb.ObjectID("board", id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Store("delete board", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("board", id)
	}
	return nil
}

func (r *MongoBoardRepository) Activities(ctx context.Context, id string) ([]domain.Activity, error) {
	oid, err := mongodb.ObjectID("board", id)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Activities []domain.Activity `bson:"activities"`
	}
	opts := options.FindOne().SetProjection(bson.M{"activities": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("board", id)
		}
		return nil, apperr.Store("find board activities", err)
	}
	if doc.Activities == nil {
		doc.Activities = []domain.Activity{}
	}
	return doc.Activities, nil
}

var _ port.BoardRepository = (*MongoBoardRepository)(nil)
