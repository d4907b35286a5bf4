package i18n

import "errors"

var (
	ErrFailedToParseYAML     = errors.New("failed to parse YAML content")
	ErrFailedToReadFile      = errors.New("failed to read translation file")
	ErrFailedToReadDirectory = errors.New("failed to read translation directory")
	ErrNoTranslations        = errors.New("no translations found")
	ErrLanguageNotSupported  = errors.New("language not supported")
)
