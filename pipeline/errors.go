package pipeline

import (
	"errors"

	"captionsearch/archive"
	"captionsearch/captioncache"
	"captionsearch/decoder"
	"captionsearch/fingerprint"
	"captionsearch/srt"
	"captionsearch/types"
)

// KindOf maps a pipeline error to its ErrorKind. Unrecognized errors are Internal.
func KindOf(err error) types.ErrorKind {
	var jobErr *types.JobError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &jobErr):
		return jobErr.Kind
	case errors.Is(err, fingerprint.ErrRead):
		return types.KindIOError
	case errors.Is(err, decoder.ErrTimeout):
		return types.KindDecoderTimeout
	case errors.Is(err, decoder.ErrFailure):
		return types.KindDecoderFailure
	case errors.Is(err, srt.ErrMalformedBlock):
		return types.KindParseError
	case errors.Is(err, captioncache.ErrUnavailable):
		return types.KindCacheUnavailable
	case errors.Is(err, archive.ErrArchival):
		return types.KindArchivalFailure
	default:
		return types.KindInternal
	}
}

// NewJobError converts err into the error attached to a Failed job.
// Decoder failures keep the captured stderr as the diagnostic.
func NewJobError(err error) *types.JobError {
	var jobErr *types.JobError
	if errors.As(err, &jobErr) {
		return jobErr
	}
	je := &types.JobError{Kind: KindOf(err), Message: err.Error()}
	var decErr *decoder.Error
	if je.Kind == types.KindDecoderFailure && errors.As(err, &decErr) {
		je.Diagnostic = decErr.Stderr
	}
	return je
}
