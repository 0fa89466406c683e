package util

import "fmt"

// ErrorDetails normalizes anything raised while serving a request into the text
// shown to API consumers: the message of an error, the String() form of a
// fmt.Stringer, or the default formatting of any other value.
func ErrorDetails(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
