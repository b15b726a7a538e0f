// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Selected values can be overridden through environment variables so a
// deployment can point the client at a different API or Redis instance
// without editing the file.
package config
