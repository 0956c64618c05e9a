//go:build !unix

package client

import (
	"errors"
	"time"
)

func setSystemTime(t time.Time) error {
	return errors.New("client: setting system time is not supported on this platform")
}
