// Package storage manages asset repositories: directories marked by a
// repository.config file, each holding media under a configurable
// placement strategy.
//
// # Repositories
//
// A repository is any directory containing a repository.config marker
// (YAML). The [Manager] keeps an in-memory registry rebuilt from marker
// files at startup; repositories are registered with AddRepository or
// created with InitializeRepository. Nesting repositories is rejected.
//
// # Placement strategies
//
// Three strategies decide where a file lands inside its repository:
//
//   - date: YYYY/MM/name.jpg
//   - cas:  ab/cd/ef/<contenthash>.jpg
//   - flat: name.jpg
//
// Name collisions under date and flat are resolved per the repository's
// duplicate-handling setting (rename, uuid, or overwrite).
//
// # Staging
//
// Uploads land in a [StagingArea] first and are moved into a repository
// only after hashing and metadata extraction succeed. The move is atomic
// where the filesystem allows, with a copy-fsync-rename fallback across
// devices, so a crash mid-placement never truncates an asset.
package storage
