package hh

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
)

// ExternalIDFromURL extracts the vacancy id from a reference such as
// https://api.hh.ru/vacancies/44528998?host=hh.ru
func ExternalIDFromURL(reference string) (int64, error) {
	u, err := url.Parse(reference)
	if err != nil {
		return 0, fmt.Errorf("invalid vacancy reference %q: %w", reference, err)
	}

	segment := path.Base(path.Clean("/" + u.Path))
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("vacancy reference %q has no numeric id", reference)
	}
	return id, nil
}
