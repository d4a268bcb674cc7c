package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"goban/internal/domain/game"
	goerrors "goban/internal/errors"
)

func snapshotKey(gameKey string) string {
	return "game:" + gameKey + ":snapshot"
}

// SaveSnapshot stores the tree and cursor of an active game. Every save
// refreshes the TTL, so only abandoned games expire.
func (g *GameRepository) SaveSnapshot(ctx context.Context, key string, snap game.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return g.redis.Set(ctx, snapshotKey(key), data, g.cfg.SessionTTL).Err()
}

func (g *GameRepository) LoadSnapshot(ctx context.Context, key string) (game.Snapshot, error) {
	data, err := g.redis.Get(ctx, snapshotKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return game.Snapshot{}, goerrors.ErrGameNotFound
		}
		g.log.Error(err)
		return game.Snapshot{}, err
	}
	return decodeSnapshot(data)
}

func (g *GameRepository) DeleteSnapshot(ctx context.Context, key string) error {
	return g.redis.Del(ctx, snapshotKey(key)).Err()
}

func encodeSnapshot(snap game.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
