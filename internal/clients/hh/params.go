package hh

import (
	"fmt"
	"github.com/pkg/errors"
	"net/url"
	"strconv"
)

// hh never returns more than maxSearchDepth results for a single search.
const maxSearchDepth = 2000

var ErrTooDeepPagination = errors.New("too deep pagination")

type SearchParameters struct {
	Text    string
	AreaID  string
	Page    int
	PerPage int
}

func (s SearchParameters) Validate() error {

	if s.Page < 0 {
		return fmt.Errorf("page must be non-negative")
	}

	if s.PerPage <= 0 || s.PerPage > 100 {
		return fmt.Errorf("per page must be between 1 and 100")
	}

	if (s.Page+1)*s.PerPage > maxSearchDepth {
		return ErrTooDeepPagination
	}

	return nil
}

func (s SearchParameters) ToUrlParams() url.Values {

	params := url.Values{}
	params.Add("text", s.Text)

	if s.AreaID != "" {
		params.Add("area", s.AreaID)
	}

	params.Add("page", strconv.Itoa(s.Page))
	params.Add("per_page", strconv.Itoa(s.PerPage))

	return params
}
