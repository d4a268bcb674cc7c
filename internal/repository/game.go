package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/game"
	goerrors "goban/internal/errors"
)

const gamesCollection = "games"

// GameRepository keeps game records in MongoDB and the snapshots of active
// games in Redis.
type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func (g *GameRepository) GenerateGameKey(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		key := uuid.New().String()
		uniq, err := g.CheckGameKeyIsUniq(ctx, key)
		if err != nil {
			return "", err
		}
		if uniq {
			return key, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique game key")
}

func (g *GameRepository) CheckGameKeyIsUniq(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	collection := g.mongo.Collection(gamesCollection)
	err := collection.FindOne(ctx, bson.M{"game_key": key}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// PutGameRecord inserts the record or replaces the stored one with the same key.
func (g *GameRepository) PutGameRecord(ctx context.Context, rec game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"game_key": rec.GameKey}, rec, opts)
	if err != nil {
		g.log.Errorf("failed to put game %s to database: %v", rec.GameKey, err)
		return err
	}

	g.log.Infof("game record %s stored with status %s", rec.GameKey, rec.Status)
	return nil
}

func (g *GameRepository) GetGameRecord(ctx context.Context, key string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	var result game.Game
	err := collection.FindOne(ctx, bson.M{"game_key": key}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, goerrors.ErrGameNotFound
	} else if err != nil {
		g.log.Error(err)
		return game.Game{}, err
	}

	return result, nil
}

// ListGameRecords returns one page of records, newest first. An empty status
// lists every game.
func (g *GameRepository) ListGameRecords(ctx context.Context, status string, page int) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	collection := g.mongo.Collection(gamesCollection)

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	limit := int64(g.cfg.PageLimitGames)
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page-1) * limit).
		SetLimit(limit).
		SetProjection(bson.M{"tree": 0})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		g.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []game.Game{}
	for cursor.Next(ctx) {
		var play game.Game
		if err = cursor.Decode(&play); err != nil {
			g.log.Error(err)
			return nil, err
		}
		result = append(result, play)
	}
	return result, cursor.Err()
}
