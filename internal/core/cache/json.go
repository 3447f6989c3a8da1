package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// null 作负缓存标记，避免不存在的 id 反复打到数据库
const null = "null"

// Entity 按数字 id 缓存单个实体，key 为 <name>:<id>，值为 JSON
type Entity[T any] struct {
	c    *Cache
	name string
	ttl  time.Duration
}

func NewEntity[T any](c *Cache, name string, ttl time.Duration) *Entity[T] {
	return &Entity[T]{c: c, name: name, ttl: ttl}
}

func (e *Entity[T]) Key(id uint) string {
	return e.name + ":" + strconv.FormatUint(uint64(id), 10)
}

// Get 未启用缓存（e 或底层 Cache 为空）时直接 load；load 返回 (nil, nil) 视为不存在
func (e *Entity[T]) Get(ctx context.Context, id uint, load func(context.Context) (*T, error)) (*T, error) {
	if e == nil || e.c == nil {
		return load(ctx)
	}
	b, err := e.c.GetOrLoad(ctx, e.Key(id), e.ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return []byte(null), nil
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == null {
		return nil, nil
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Forget 实体变更后删除缓存
func (e *Entity[T]) Forget(ctx context.Context, ids ...uint) error {
	if e == nil || e.c == nil || len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = e.Key(id)
	}
	return e.c.Delete(ctx, keys...)
}
