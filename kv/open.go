package kv

import (
	"defectboard/config"
	"defectboard/persistence"
	"fmt"

	"github.com/go-redis/redis/v9"
)

// Open builds the backend named by cfg.Workflow.Storage. ds is required only for "database".
func Open(cfg *config.Config, ds *persistence.DataSourceManager) (Store, error) {
	switch cfg.Workflow.Storage {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Workflow.FileDir)
	case "database":
		if ds == nil {
			return nil, fmt.Errorf("kv: database storage requires a data source")
		}
		return NewDatabaseStore(ds)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		return NewRedisStore(client, cfg.Redis.Namespace), nil
	case "oss":
		bucket, err := BuildBucket(cfg.OSS.Endpoint, cfg.OSS.AccessKey, cfg.OSS.SecretKey, cfg.OSS.Bucket)
		if err != nil {
			return nil, err
		}
		return NewOSSStore(bucket, cfg.OSS.Prefix), nil
	default:
		return nil, fmt.Errorf("kv: unknown storage '%s'", cfg.Workflow.Storage)
	}
}
