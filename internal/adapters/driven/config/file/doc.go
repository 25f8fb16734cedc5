// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML-backed non-secret settings (~/.cardscrub/config.toml)
package file
