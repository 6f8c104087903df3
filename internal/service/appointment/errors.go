package appointment

import "errors"

// ErrInvalidDate is returned by the list operations, which report plain
// errors instead of tagged results.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD form")
