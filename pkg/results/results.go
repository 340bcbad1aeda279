// Package results names and stores rendered result images.
//
// Images of one poll week live under results/{year}/{week}/ where year and
// week are the ISO-8601 week-numbering year and week of the poll date. Other
// components look images up by the same rule, so [YearAndWeek] must stay a
// pure function of the date string.
package results

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/matzehuels/pollcard/pkg/errors"
)

// Dir is the top-level directory of all result images.
const Dir = "results"

// Well-known image names.
const (
	AvatarName   = "avatar"
	NoOptionName = "NoOption"
)

// Key identifies one poll week.
type Key struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// YearAndWeek parses a DD.MM.YYYY date and returns its ISO year and week.
// Dates in the first days of January can belong to the last week of the
// previous year and vice versa.
func YearAndWeek(date string) (Key, error) {
	t, err := errors.ParseDate(date)
	if err != nil {
		return Key{}, err
	}
	year, week := t.ISOWeek()
	return Key{Year: year, Week: week}, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Year, k.Week)
}

// Dir returns results/{year}/{week} with forward slashes.
func (k Key) Dir() string {
	return path.Join(Dir, fmt.Sprint(k.Year), fmt.Sprint(k.Week))
}

// Path returns results/{year}/{week}/{name}.png with forward slashes.
func (k Key) Path(name string) (string, error) {
	if err := errors.ValidateArtifactName(name); err != nil {
		return "", err
	}
	return path.Join(k.Dir(), name+".png"), nil
}

// OptionName is the image name of the card highlighting option n (1-based),
// or NoOptionName for n == 0.
func OptionName(n int) string {
	if n <= 0 {
		return NoOptionName
	}
	return fmt.Sprintf("Option%d", n)
}

// FileWriter persists images below a root directory.
type FileWriter struct {
	Root string
}

// NewFileWriter returns a writer rooted at root ("." when empty).
func NewFileWriter(root string) *FileWriter {
	if root == "" {
		root = "."
	}
	return &FileWriter{Root: root}
}

// Write stores data at the key's path for name, creating directories as
// needed, and returns the written file path. The file is replaced
// atomically so readers never see a partial image.
func (w *FileWriter) Write(k Key, name string, data []byte) (string, error) {
	rel, err := k.Path(name)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(w.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "create %s", filepath.Dir(dst))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+name+"-*.png")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write %s", dst)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write %s", dst)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write %s", dst)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write %s", dst)
	}
	return dst, nil
}
