package pixlzr

import "github.com/pkg/errors"

var (
	ErrInvalidMagic       = errors.New("pixlzr: invalid magic")
	ErrInvalidBlockMagic  = errors.New("pixlzr: invalid block magic")
	ErrUnsupportedVersion = errors.New("pixlzr: unsupported version")
	ErrInvalidHeader      = errors.New("pixlzr: invalid header")
	ErrShortBuffer        = errors.New("pixlzr: buffer too short")
	ErrLineSize           = errors.New("pixlzr: line sizes do not match payload")
	ErrPixelCodec         = errors.New("pixlzr: block pixel codec failure")
	ErrGridMismatch       = errors.New("pixlzr: block count does not match grid")
	ErrZeroBlockSize      = errors.New("pixlzr: block size must be non-zero")
	ErrTrailingData       = errors.New("pixlzr: trailing data after last block")
	ErrInvalidFactor      = errors.New("pixlzr: shrink factor must be finite")
)
