package availability

import (
	"errors"
	"time"

	"github.com/ovall/dentavia_backend/internal/store"
)

var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD form")

func parseDate(date string) (time.Time, error) {
	return time.Parse(store.DateLayout, date)
}
