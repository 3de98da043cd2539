// Package config loads application configuration from environment
// variables (WINDOA_ prefix) with an optional YAML file underlay.
// Environment values always win over file values.
package config
