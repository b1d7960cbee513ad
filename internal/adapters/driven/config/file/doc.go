// Package file keeps user-editable configuration on disk: config.toml for
// settings and a prompts directory whose templates override the built-in
// prompts.
package file
