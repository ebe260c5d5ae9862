package backend

import "errors"

// Sentinel errors for the distinct failure modes of a synthesis call. The CLI
// boundary folds them all into one JSON error envelope; the HTTP boundary maps
// them to status codes with errors.Is.
var (
	ErrEmptyInput            = errors.New("text is required")
	ErrUnsupportedLanguage   = errors.New("unsupported lang_code")
	ErrInvalidResponseFormat = errors.New("response_format must be one of: wav, wav_base64")
	ErrMissingOutputPath     = errors.New("output_path is required when response_format='wav'")
	ErrPipelineInit          = errors.New("failed to initialize pipeline")
	ErrSynthesis             = errors.New("synthesis failed")
	ErrNoAudio               = errors.New("pipeline returned no audio segments")
)
