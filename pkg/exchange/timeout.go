package exchange

import (
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/constants"
)

func afterDiscardTimeout() <-chan time.Time {
	return time.After(constants.DiscardStreamTimeout)
}
