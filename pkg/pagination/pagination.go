package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/journalist-service/server/pkg/errors"
	"github.com/journalist-service/server/pkg/validator"
)

// Params describes a page window. Page is 0-based; a nil Size means the
// window is unbounded.
type Params struct {
	Page int  `json:"page" validate:"gte=0"`
	Size *int `json:"size,omitempty" validate:"omitempty,gte=1"`
}

// All returns params selecting the whole match set.
func All() Params {
	return Params{}
}

// New returns params for the given page and size.
func New(page, size int) Params {
	return Params{Page: page, Size: &size}
}

// FromRequest reads `page` and `size` from the query string. Absent values
// default to page 0 and no size limit. Non-numeric or out-of-range values are
// reported as invalid input.
func FromRequest(r *http.Request) (Params, error) {
	q := r.URL.Query()
	p := All()

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, apperrors.InvalidInput(fmt.Sprintf("page must be an integer, got %q", v))
		}
		p.Page = page
	}

	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, apperrors.InvalidInput(fmt.Sprintf("size must be an integer, got %q", v))
		}
		p.Size = &size
	}

	if err := validator.Validate(p); err != nil {
		return Params{}, apperrors.InvalidInput(err.Error())
	}
	if p.Size != nil && int64(p.Page) > math.MaxInt64/int64(*p.Size) {
		return Params{}, apperrors.InvalidInput(fmt.Sprintf("page %d is out of range for size %d", p.Page, *p.Size))
	}
	return p, nil
}

// Offset is the number of matches skipped before the window starts.
func (p Params) Offset() int64 {
	if p.Size == nil {
		return 0
	}
	return int64(p.Page) * int64(*p.Size)
}

// Limit is the window length, or 0 when unbounded.
func (p Params) Limit() int64 {
	if p.Size == nil {
		return 0
	}
	return int64(*p.Size)
}

// Window returns the slice of items covered by p.
func Window[T any](items []T, p Params) []T {
	offset := p.Offset()
	if offset < 0 || offset >= int64(len(items)) {
		return []T{}
	}
	end := int64(len(items))
	if limit := p.Limit(); limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
