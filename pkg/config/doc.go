// Package config loads typed configuration structs from environment variables.
//
// Each package that needs configuration declares its own Config struct with
// `env` tags and defaults, and the composition root loads it once at startup:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// A .env file in the working directory is applied once before the first load,
// which keeps local development setups out of the shell profile.
package config
