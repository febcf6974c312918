// Package config loads and merges panelgap configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PANELGAP_FORMAT, PANELGAP_FAIL_ON, REDIS_ADDR, etc.),
//     including those loaded from .env files
//  3. Config file ($XDG_CONFIG_HOME/panelgap/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single dotted key such as "redis.addr".
package config
