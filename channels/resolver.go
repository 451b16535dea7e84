// Package channels — политика приёма постов, пересланных из каналов.
package channels

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"go_submit_bot/database"
)

type Store interface {
	UpsertChannelSetting(ctx context.Context, channelID int64, title string) (*database.ChannelSetting, error)
}

// Resolver возвращает политику канала-источника. Политики меняются редко,
// поэтому прячутся за LRU-кэшем; счётчик обращений в базе из-за этого
// приблизительный.
type Resolver struct {
	store Store
	cache *lru.Cache[int64, database.ChannelOption]
}

func NewResolver(store Store) *Resolver {
	cache, _ := lru.New[int64, database.ChannelOption](256)
	return &Resolver{store: store, cache: cache}
}

func (r *Resolver) Resolve(ctx context.Context, channelID int64, title string) (database.ChannelOption, error) {
	if opt, ok := r.cache.Get(channelID); ok {
		return opt, nil
	}
	cs, err := r.store.UpsertChannelSetting(ctx, channelID, title)
	if err != nil {
		return database.ChannelNormal, err
	}
	r.cache.Add(channelID, cs.Option)
	return cs.Option, nil
}

// Forget сбрасывает кэш для канала (после смены политики администратором).
func (r *Resolver) Forget(channelID int64) {
	r.cache.Remove(channelID)
}
