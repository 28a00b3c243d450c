// Package profile persists the local user's profile as a single JSON object.
//
// The file is replaced atomically on every save, so a crash never leaves a
// truncated profile behind. A missing file is reported as common.ErrNotFound
// and an unparsable one as common.ErrCorrupt.
package profile
