// Package storage keeps uploaded model files.
package storage

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves an uploaded file and returns the URL it is reachable under.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName builds `YYYYMMDD_HHMMSS_<token>_<name>` from the upload time,
// a per-upload token and the sanitized base name. The token keeps two
// uploads of the same file within one second apart.
func ObjectName(now time.Time, token, name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "model"
	}
	return now.UTC().Format("20060102_150405") + "_" + token + "_" + base
}

func newToken() string {
	return uuid.NewString()[:8]
}
