// Package config loads typed configuration structs from environment
// variables, with optional .env file support for development.
//
// Each config struct describes its variables with `env` tags (parsed by
// github.com/caarlos0/env); Load caches parsed values per type so every
// component sees the same configuration for the process lifetime.
package config
