package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the value of the environment variable key or defaultVal if unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

// GetEnvEnum returns the env value if it is one of allowedValues, defaultVal otherwise.
func GetEnvEnum(key string, defaultVal string, allowedValues []string) string {
	if !contains(allowedValues, defaultVal) {
		log.Panic().Str("key", key).Str("value", defaultVal).Msg("Default value is not in the allowed values list.")
	}

	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	if !contains(allowedValues, val) {
		log.Error().Str("key", key).Str("value", val).Msg("Value is not allowed. Fallback to default value.")
		return defaultVal
	}

	return val
}

func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strings.TrimSpace(strVal)); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsInt64(key string, defaultVal int64) int64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsUint32(key string, defaultVal uint32) uint32 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseUint(strings.TrimSpace(strVal), 10, 32); err == nil {
		return uint32(val)
	}

	return defaultVal
}

func GetEnvAsUint64(key string, defaultVal uint64) uint64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseUint(strings.TrimSpace(strVal), 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsFloat64(key string, defaultVal float64) float64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsDurationSeconds reads an integer amount of seconds.
func GetEnvAsDurationSeconds(key string, defaultVal time.Duration) time.Duration {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strings.TrimSpace(strVal)); err == nil && val > 0 {
		return time.Duration(val) * time.Second
	}

	return defaultVal
}

// GetEnvAsStringArrTrimmed splits the env value by separator (default ",")
// and drops empty entries.
func GetEnvAsStringArrTrimmed(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")
	if len(strings.TrimSpace(strVal)) == 0 {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	parts := strings.Split(strVal, sep)
	res := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			res = append(res, part)
		}
	}

	if len(res) == 0 {
		return defaultVal
	}

	return res
}

func contains(values []string, val string) bool {
	for _, v := range values {
		if v == val {
			return true
		}
	}

	return false
}
