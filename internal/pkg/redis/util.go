package redis

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// HSetJSON 将 value 序列化为 JSON 写入哈希字段
func HSetJSON(ctx context.Context, rdb redis.Cmdable, key, field string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.HSet(ctx, key, field, data).Err()
}

// HGetJSON 读取哈希字段并反序列化，字段不存在时返回 false
func HGetJSON(ctx context.Context, rdb redis.Cmdable, key, field string, out any) (bool, error) {
	data, err := rdb.HGet(ctx, key, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err = json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}
