package domain

import "time"

type Config struct {
	Enabled bool

	// FreeDailyLimit caps downloads per subject per UTC calendar day for
	// non-premium subjects.
	FreeDailyLimit int

	// CounterTTL bounds how long a day's counter key lives. Anything past
	// the day boundary is fine; expired counters read as zero.
	CounterTTL time.Duration
}
