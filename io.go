package pixlzr

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Extensions recognized as containers. A trailing ".zst" marks a zstd
// wrapped container.
const (
	Ext      = ".pix"
	ExtLong  = ".pixlzr"
	ExtZstd  = ".zst"
	fileMode = 0o644
)

// IsContainerPath reports whether path names a container file, with or
// without the zstd suffix.
func IsContainerPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ExtZstd {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return ext == Ext || ext == ExtLong
}

// Open reads and decodes the container at path. zstd frames are detected
// by their magic, not by the file name.
func Open(path string) (*Pixlzr, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open the image [ %s ]", path)
	}
	p, err := DecodeBytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode [ %s ]", path)
	}
	return p, nil
}

// DecodeBytes decodes a container that may be zstd wrapped.
func DecodeBytes(data []byte) (*Pixlzr, error) {
	if IsCompressed(data) {
		raw, err := Decompress(data)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return Decode(data)
}

// Save encodes p to path, zstd wrapped when path ends in ".zst".
func (p *Pixlzr) Save(path string) error {
	data, err := Encode(p)
	if err != nil {
		return errors.Wrapf(err, "could not encode [ %s ]", path)
	}
	if strings.EqualFold(filepath.Ext(path), ExtZstd) {
		data = Compress(data)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return errors.Wrapf(err, "could not save the image [ %s ]", path)
	}
	return nil
}
