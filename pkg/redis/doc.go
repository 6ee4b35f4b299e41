// Package redis connects to a Redis server with retries and exposes a
// readiness probe. The returned *redis.Client is the go-redis client; callers
// such as the Redis-backed session store use it directly.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	ready := redis.Healthcheck(client)
package redis
