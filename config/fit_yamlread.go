package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"regime/infra/observe/staticLog"

	"gopkg.in/yaml.v3"
)

// 拟合默认参数, 可由yaml覆盖
type FitConfig struct {
	EMMaxIter  int     `yaml:"em_maxiter"`  // EM warm start 最大迭代
	EMTol      float64 `yaml:"em_tol"`      // EM 对数似然收敛容差
	MLEMaxIter int     `yaml:"mle_maxiter"` // Nelder-Mead 最大迭代
	MLETol     float64 `yaml:"mle_tol"`
	Restarts   int     `yaml:"restarts"` // 随机重启次数
	Seed       uint64  `yaml:"seed"`
	LogPath    string  `yaml:"log_path"` // 迭代日志文件, 空则stderr
}

func Default() FitConfig {
	return FitConfig{
		EMMaxIter:  200,
		EMTol:      1e-6,
		MLEMaxIter: 2000,
		MLETol:     1e-8,
		Restarts:   0,
		Seed:       42,
	}
}

// 用 atomic.Value 存当前配置，支持热更新时无锁读取
var cfgValue atomic.Value // stores *FitConfig

func Load(path string) (*FitConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if c.EMMaxIter <= 0 || c.MLEMaxIter <= 0 {
		return nil, fmt.Errorf("invalid maxiter: em=%d mle=%d", c.EMMaxIter, c.MLEMaxIter)
	}
	if c.EMTol <= 0 || c.MLETol <= 0 {
		return nil, fmt.Errorf("invalid tol: em=%g mle=%g", c.EMTol, c.MLETol)
	}
	if c.Restarts < 0 {
		return nil, fmt.Errorf("invalid restarts: %d", c.Restarts)
	}
	return &c, nil
}

func Init(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	cfgValue.Store(c)
	staticLog.InitFile(c.LogPath, false)
	return nil
}

// Get O(1)读取当前配置, 未Init时返回默认值
func Get() FitConfig {
	cAny := cfgValue.Load()
	if cAny == nil {
		return Default()
	}
	return *cAny.(*FitConfig)
}
