package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYaml(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeYaml(t, `
em_maxiter: 50
mle_maxiter: 500
restarts: 3
seed: 7
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.EMMaxIter)
	assert.Equal(t, 500, c.MLEMaxIter)
	assert.Equal(t, 3, c.Restarts)
	assert.Equal(t, uint64(7), c.Seed)
	// 未出现的键保持默认
	assert.Equal(t, Default().EMTol, c.EMTol)
	assert.Equal(t, Default().MLETol, c.MLETol)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for _, body := range []string{
		"em_maxiter: 0",
		"mle_maxiter: -1",
		"em_tol: -0.001",
		"restarts: -2",
		"em_maxiter: [1,2]", // 类型错误
	} {
		path := writeYaml(t, body)
		_, err := Load(path)
		assert.Error(t, err, body)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitAndGet(t *testing.T) {
	// 未Init时返回默认配置
	assert.Equal(t, Default(), Get())

	path := writeYaml(t, "seed: 99")
	require.NoError(t, Init(path))
	assert.Equal(t, uint64(99), Get().Seed)

	// 热更新
	path2 := writeYaml(t, "seed: 123")
	require.NoError(t, Init(path2))
	assert.Equal(t, uint64(123), Get().Seed)
}
