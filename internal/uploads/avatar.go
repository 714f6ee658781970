package uploads

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// AvatarStore places uploaded avatar images in a flat public directory.
type AvatarStore struct {
	dir string
}

// NewAvatarStore creates the asset directory if needed.
func NewAvatarStore(dir string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}
	return &AvatarStore{dir: dir}, nil
}

// Dir returns the asset directory.
func (s *AvatarStore) Dir() string {
	return s.dir
}

// Extension returns the text after the last dot of filename, or "" when there
// is no dot.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}

// UniqueName generates a fresh file name keeping the original extension.
func UniqueName(original string) string {
	name := uuid.NewString()
	if ext := Extension(original); ext != "" {
		name += "." + ext
	}
	return name
}

// PublicURL joins an origin such as "https://example.com" and a stored file name.
func PublicURL(origin, name string) string {
	return strings.TrimSuffix(origin, "/") + "/" + name
}

// Store saves the uploaded file under a generated name and returns the URL it
// is reachable at below origin.
func (s *AvatarStore) Store(fh *multipart.FileHeader, origin string) (string, error) {
	if fh == nil {
		return "", errors.New("no file to store")
	}
	name := UniqueName(fh.Filename)
	if err := fasthttp.SaveMultipartFile(fh, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store avatar %s: %w", fh.Filename, err)
	}
	return PublicURL(origin, name), nil
}

// Remove deletes the file a URL returned by Store points at. A file that is
// already gone is not an error.
func (s *AvatarStore) Remove(url string) error {
	name := path.Base(url)
	if name == "" || name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove avatar %s: %w", name, err)
	}
	return nil
}
