package util

import (
	"log"
	"strconv"
)

func ParseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Printf("err parsing int64 from %q: %+v\n", s, err)
		return 0
	}
	return n
}

func AsPtr[T any](v T) *T {
	return &v
}
