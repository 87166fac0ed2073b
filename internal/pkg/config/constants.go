//go:build !windows
// +build !windows

package config

const (
	// *nix & darwin defaults
	defaultFfprobePath = "/usr/bin/ffprobe"
	defaultCachePath   = ""
	defaultLogFile     = ""

	DefaultConfigPath = "/etc/convertmdinfo/config.yaml"
)
