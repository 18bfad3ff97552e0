package earmark

import (
	"errors"

	"github.com/himanishpuri/EarMark/pkg/earmark/audio"
	"github.com/himanishpuri/EarMark/pkg/earmark/storage"
)

var (
	// ErrDecodeFailed is returned when an input file cannot be decoded.
	ErrDecodeFailed = audio.ErrDecodeFailed
	// ErrNotFound is returned for unknown sound ids.
	ErrNotFound = storage.ErrNotFound
	// ErrInvalidInput covers missing names, owners and sample rates.
	ErrInvalidInput = errors.New("invalid input")
	// ErrClipTooShort is returned when a clip to be taught yields no frames.
	ErrClipTooShort = errors.New("clip too short to fingerprint")
)
