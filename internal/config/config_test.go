package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymmetricQueueMatchesEqualCoreLists(t *testing.T) {
	p := PortConfig{RxCores: []int{0, 1}, TxCores: []int{0, 1}}
	assert.True(t, p.SymmetricQueue())

	p2 := PortConfig{RxCores: []int{0, 1}, TxCores: []int{1, 0}}
	assert.False(t, p2.SymmetricQueue())

	p3 := PortConfig{RxCores: []int{0}, TxCores: []int{0, 1}}
	assert.False(t, p3.SymmetricQueue())
}

func TestDefaultProcessConfigMatchesFallbacks(t *testing.T) {
	cfg := DefaultProcessConfig()
	assert.Equal(t, DefaultName, cfg.Name)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.False(t, cfg.Secondary)
}
