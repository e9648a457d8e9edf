package config

import (
	"strconv"
	"time"

	"github.com/giantswarm/microerror"
)

// Duration decodes TOML values like "600s", "4m" or plain integer seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	v, err := time.ParseDuration(s)
	if err == nil {
		d.Duration = v
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return microerror.Maskf(invalidConfigError, "duration %#q must be a Go duration or integer seconds", s)
	}
	d.Duration = time.Duration(n) * time.Second

	return nil
}
