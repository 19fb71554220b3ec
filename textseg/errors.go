package textseg

import "errors"

var (
	// ErrWindowTooSmall is returned when the window size is below one word.
	ErrWindowTooSmall = errors.New("window size must be at least 1")

	// ErrOverlapTooLarge is returned when the overlap is negative or
	// not smaller than the window size.
	ErrOverlapTooLarge = errors.New("overlap must be non-negative and smaller than window size")
)
