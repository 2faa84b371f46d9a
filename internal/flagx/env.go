package flagx

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString copies the first non-empty variable among keys into dst.
// dst is left untouched when none is set.
func EnvString(dst *string, keys ...string) {
	if v, ok := lookup(keys); ok {
		*dst = v
	}
}

// EnvDuration parses the first non-empty variable among keys with
// time.ParseDuration. A bare integer is read as seconds.
func EnvDuration(dst *time.Duration, keys ...string) error {
	v, ok := lookup(keys)
	if !ok {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", keys[0], err)
	}
	*dst = d
	return nil
}

// EnvInt parses the first non-empty variable among keys as an integer.
func EnvInt(dst *int, keys ...string) error {
	v, ok := lookup(keys)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", keys[0], err)
	}
	*dst = n
	return nil
}

func lookup(keys []string) (string, bool) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, true
		}
	}
	return "", false
}
