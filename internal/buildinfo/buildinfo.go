// Package buildinfo はバージョン表示用のビルド情報を提供する
package buildinfo

import (
	"runtime/debug"
	"strings"
)

const (
	devVersion = "dev"
	unknown    = "unknown"
)

// リリースビルドでは -ldflags "-X gbf-bot/internal/buildinfo.version=..." で埋め込む。
// 未設定の値は go build が記録したVCS情報で補う
var (
	version   = devVersion
	commitID  = unknown
	buildTime = unknown
	goBuild   = unknown
)

var readBuildInfo = debug.ReadBuildInfo

func init() {
	fillFromBuildInfo()
}

func fillFromBuildInfo() {
	info, ok := readBuildInfo()
	if !ok {
		return
	}
	if goBuild == unknown && info.GoVersion != "" {
		goBuild = info.GoVersion
	}
	if version == devVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commitID == unknown && setting.Value != "" {
				commitID = setting.Value
			}
		case "vcs.time":
			if buildTime == unknown && setting.Value != "" {
				buildTime = setting.Value
			}
		}
	}
}

func Version() string {
	return version
}

func VersionWithPrefix() string {
	if version == devVersion || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

func CommitID() string {
	return commitID
}

// ShortCommitID はgitの短縮ハッシュと同じ7桁に切り詰める
func ShortCommitID() string {
	const n = 7
	if commitID == unknown || len(commitID) <= n {
		return commitID
	}
	return commitID[:n]
}

func BuildTime() string {
	return buildTime
}

func GoBuild() string {
	return goBuild
}
