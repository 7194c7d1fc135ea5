package config

import (
	"os"
	"path/filepath"
)

const defaultConfigRelPath = "configs/conf.yml"

// EnvPrefix 环境变量前缀：LABYRINTH_GAMESERVER_PORT 覆盖 gameserver.port。
const EnvPrefix = "LABYRINTH"

// Load 读取配置到 out（必须是指针），并在文件变更时重新解码。
//
// 约定：
// 1) 传入 cfgName（相对/绝对路径）且文件存在则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Load(cfgName string, out any) error {
	path, err := Resolve(cfgName)
	if err != nil {
		return err
	}
	return load(path, out)
}

// Resolve 解析配置文件的绝对路径。
func Resolve(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cfgName != "" {
		p := cfgName
		if !filepath.IsAbs(p) {
			p = filepath.Join(curDir, cfgName)
		}
		if fileExist(p) {
			return p, nil
		}
	}
	return findConfigUpward(curDir)
}

func findConfigUpward(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotFoundError{From: startDir}
		}
		dir = parent
	}
}

type NotFoundError struct {
	From string
}

func (e *NotFoundError) Error() string {
	return "config file not exist, searched " + defaultConfigRelPath + " from: " + e.From
}
