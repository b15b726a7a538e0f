package cache

import "time"

func unixMSTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func minutesDuration(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
