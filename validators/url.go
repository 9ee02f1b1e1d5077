package validators

import (
	"errors"
	"net/url"
)

var (
	ErrURLEmpty   = errors.New("no destination URL provided")
	ErrURLInvalid = errors.New("destination must be an absolute http or https URL")
	ErrURLTooLong = errors.New("destination URL is too long")
)

func URLValidator(u string) error {
	if u == "" {
		return ErrURLEmpty
	}

	if len(u) > 2048 {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return ErrURLInvalid
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrURLInvalid
	}

	return nil
}
