package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Resolve bool
	Guard   bool
	Include bool
	Parse   bool
	Open    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Resolve = boolEnv("YAY_DEBUG_RESOLVE")
	d.Guard = boolEnv("YAY_DEBUG_GUARD")
	d.Include = boolEnv("YAY_DEBUG_INCLUDE")
	d.Parse = boolEnv("YAY_DEBUG_PARSE")
	d.Open = boolEnv("YAY_DEBUG_OPEN")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Resolve() bool {
	return d.Resolve
}
func Guard() bool {
	return d.Guard
}
func Include() bool {
	return d.Include
}
func Parse() bool {
	return d.Parse
}
func Open() bool {
	return d.Open
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
