// Package config manages user-level settings stored at ~/.nextjs-starter/config.yaml.
// Values resolve from command flags, NEXTSTARTER_* environment variables, the
// config file and finally the built-in defaults, in that order.
package config
