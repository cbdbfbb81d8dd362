package rest_test

import (
	"net/url"
	"strconv"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func urlEscape(v string) string {
	return url.QueryEscape(v)
}
