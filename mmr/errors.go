package mmr

import "errors"

var (
	ErrInvalidElementIndex  = errors.New("invalid element index")
	ErrInvalidElementsCount = errors.New("invalid elements count")
)
