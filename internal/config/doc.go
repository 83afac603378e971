// Package config provides configuration structures and utilities for dataminer.
// It defines crawl limits, fetch settings, batch concurrency, storage
// locations and per-site overrides loaded from an optional YAML file.
package config
