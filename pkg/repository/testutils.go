package repository

import (
	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/alicebob/miniredis/v2"
)

// NewRedisClientForTest creates a Redis client backed by miniredis for testing
func NewRedisClientForTest() (*common.RedisClient, error) {
	s, err := miniredis.Run()
	if err != nil {
		return nil, err
	}

	rdb, err := common.NewRedisClient(types.RedisConfig{
		Addr: s.Addr(),
	})
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewVolumeRepositoryForTest creates an in-memory VolumeRepository
func NewVolumeRepositoryForTest() VolumeRepository {
	return NewMemoryVolumeRepository()
}
