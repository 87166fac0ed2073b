//go:build windows
// +build windows

package config

const (
	// windows defaults
	defaultFfprobePath = `c:\ffmpeg\ffprobe.exe`
	defaultCachePath   = ""
	defaultLogFile     = ""

	DefaultConfigPath = `c:\ProgramData\convertmdinfo\config.yaml`
)
