package infrastructure

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kanbanApi/internal/modules/users/application/port"
	"kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/platform/mongodb"
	"kanbanApi/internal/shared/apperr"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(mongodb.UsersCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return apperr.Store("create user indexes", err)
}

func (r *MongoUserRepository) Query(ctx context.Context, filter domain.Filter) ([]domain.User, error) {
	criteria := bson.M{}
	if txt := strings.TrimSpace(filter.Txt); txt != "" {
		re := mongodb.ContainsInsensitive(txt)
		criteria["$or"] = bson.A{bson.M{"email": re}, bson.M{"fullname": re}}
	}
	cur, err := r.coll.Find(ctx, criteria, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, apperr.Store("find users", err)
	}
	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, apperr.Store("decode users", err)
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	return r.findOne(ctx, bson.M{"_id": oid}, "user", id, opts)
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	return r.findOne(ctx, bson.M{"email": email}, "user", email)
}

func (r *MongoUserRepository) findOne(ctx context.Context, criteria bson.M, kind, key string, opts ...*options.FindOneOptions) (*domain.User, error) {
	var user domain.User
	if err := r.coll.FindOne(ctx, criteria, opts...).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound(kind, key)
		}
		return nil, apperr.Store("find user", err)
	}
	user.Normalize()
	return &user, nil
}

func (r *MongoUserRepository) Insert(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Validation("email already exists")
		}
		return apperr.Store("insert user", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	user.Normalize()
	return nil
}

func (r *MongoUserRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error) {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if patch.Fullname != nil {
		set["fullname"] = strings.TrimSpace(*patch.Fullname)
	}
	if patch.ImgURL != nil {
		set["imgUrl"] = *patch.ImgURL
	}
	if patch.Score != nil {
		set["score"] = *patch.Score
	}
	if len(set) > 0 {
		res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
		if err != nil {
			return nil, apperr.Store("update user", err)
		}
		if res.MatchedCount == 0 {
			return nil, apperr.NotFound("user", id)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Store("delete user", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (r *MongoUserRepository) AddActivity(ctx context.Context, id string, activity domain.Activity) error {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"activities": activity}})
	if err != nil {
		return apperr.Store("add user activity", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

var _ port.UserRepository = (*MongoUserRepository)(nil)
