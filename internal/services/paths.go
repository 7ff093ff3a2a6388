package services

import (
	"net/url"
)

const apiPrefix = "/api/v1"

// keyQuery renders the manage-key query string
func keyQuery(key string) string {
	return "?" + url.Values{"key": {key}}.Encode()
}

func segment(s string) string {
	return url.PathEscape(s)
}
