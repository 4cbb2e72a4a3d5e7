package change_detection

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Codify returns the source literal for obj. Values JSON cannot encode are
// emitted as their quoted %v form.
func Codify(obj interface{}) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return strconv.Quote(fmt.Sprint(obj))
	}
	return string(b)
}

// RawString wraps str in single quotes without escaping it
func RawString(str string) string {
	return "'" + str + "'"
}

// CombineGeneratedStrings concatenates generated string expressions
func CombineGeneratedStrings(vals []string) string {
	return strings.Join(vals, " + ")
}
