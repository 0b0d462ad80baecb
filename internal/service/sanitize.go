package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips all markup from user-supplied free text before it is
// persisted or echoed back.
var strictPolicy = bluemonday.StrictPolicy()

func sanitizeText(value string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(value))
}
