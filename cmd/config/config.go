package config

// Package config in cmd provides a thin wrapper around the shared
// configuration loader found in pkg/config. It exposes the loaded
// configuration via the AppConfig variable for convenience in CLI command
// handlers.

import (
	pkgconfig "stylusctor/pkg/config"
)

// AppConfig holds the currently loaded configuration for command line
// utilities. It mirrors pkg/config.AppConfig but is scoped to this package
// for convenience when writing CLI tools and tests.
var AppConfig pkgconfig.Config

// LoadConfig loads the configuration from the file at path (may be empty)
// and stores it in AppConfig. Any errors during loading cause a panic,
// which is acceptable for command line initialisation where failure should
// abort execution before any subcommand runs.
func LoadConfig(path string) {
	cfg, err := pkgconfig.Load(path)
	if err != nil {
		panic(err)
	}
	AppConfig = *cfg
}
