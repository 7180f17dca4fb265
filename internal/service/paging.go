package service

import "math"

// MaxPageLimit caps the page size a client may ask for.
const MaxPageLimit = 100

// maxOffset bounds the rows a page may skip so offsets fit the database's
// integer type on every dialect.
const maxOffset = math.MaxInt32

var ErrInvalidPage = &FieldError{ErrNotFound, "", "invalid page"}

// PageRequest selects one page of a list. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest normalizes page and limit, as read from a query string,
// and rejects pages whose offset is out of range.
func NewPageRequest(page, limit, defaultLimit int) (PageRequest, error) {
	p := PageRequest{Page: page, Limit: limit}.normalize(defaultLimit)
	if p.Page-1 > maxOffset/p.Limit {
		return PageRequest{}, ErrInvalidPage
	}
	return p, nil
}

func (p PageRequest) normalize(defaultLimit int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
