package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// saveAttempts bounds retries when a generated object name already exists.
const saveAttempts = 3

// Local writes files into a directory that the HTTP server exposes under
// URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
	token     func() string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: urlPrefix, now: time.Now, token: newToken}, nil
}

// Save never replaces an existing file.
func (l *Local) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		object := ObjectName(l.now(), l.token(), name)
		err := writeNew(filepath.Join(l.Dir, object), data)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("write upload %s: %w", object, err)
		}
		return path.Join(l.URLPrefix, object), nil
	}
	return "", fmt.Errorf("write upload %s: no free object name after %d attempts", name, saveAttempts)
}

func writeNew(file string, data []byte) error {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(file)
		return err
	}
	return f.Close()
}
