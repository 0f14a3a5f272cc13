package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInputDirectory   = errors.New("input directory does not exist")
	ErrNoImagesFound           = errors.New("no images found in the input directory")
	ErrInvalidImageMetadata    = errors.New("invalid image metadata")
	ErrInvalidLayoutParameters = errors.New("invalid layout parameters")
	ErrMetadataRead            = errors.New("failed to read image metadata")
	ErrOutputDirectoryCreate   = errors.New("failed to create output directory")
	ErrInvalidJobConfig        = errors.New("invalid job config")
)

// ImageProcessingError carries the file a pipeline failed on.
type ImageProcessingError struct {
	Filename string
	Op       OperationType
	Err      error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("failed to process %s: %s: %v", e.Filename, e.Op, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

func NewImageProcessingError(filename string, op OperationType, err error) *ImageProcessingError {
	return &ImageProcessingError{Filename: filename, Op: op, Err: err}
}

// FailedFilename returns the file attached to err, if any.
func FailedFilename(err error) (string, bool) {
	var pe *ImageProcessingError
	if errors.As(err, &pe) {
		return pe.Filename, true
	}
	return "", false
}
