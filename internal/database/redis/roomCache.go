package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ds124wfegd/hotel-booking/internal/entity"

	"github.com/go-redis/redis/v8"
)

// RoomCache кеширует карточки номеров: они читаются при каждом расчете
// стоимости и почти не меняются
type RoomCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomCache(client *redis.Client, ttl time.Duration) *RoomCache {
	return &RoomCache{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(id int64) string {
	return fmt.Sprintf("room:%d", id)
}

func (c *RoomCache) SetRoom(ctx context.Context, room *entity.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, roomKey(room.ID), data, c.ttl).Err()
}

func (c *RoomCache) GetRoom(ctx context.Context, id int64) (*entity.Room, error) {
	data, err := c.client.Get(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var room entity.Room
	err = json.Unmarshal([]byte(data), &room)
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (c *RoomCache) DeleteRoom(ctx context.Context, id int64) error {
	return c.client.Del(ctx, roomKey(id)).Err()
}
