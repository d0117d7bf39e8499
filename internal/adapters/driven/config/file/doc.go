// Package file loads run settings from a TOML file.
package file
