package http

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "shareit/pkg/errors"
)

const (
	UserIDHeader = "X-Sharer-User-Id"
	FromParam    = "from"
	SizeParam    = "size"
)

// ExtractUserID returns the caller id carried by the X-Sharer-User-Id header.
func ExtractUserID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return "", apperrors.InvalidInput("missing " + UserIDHeader + " header")
	}
	return id, nil
}

// ExtractFromSize parses the from/size paging pair. from defaults to 0 and
// must not be negative. size is optional: when absent the returned limit is
// 0, which repositories treat as unbounded; when given it must be positive.
func ExtractFromSize(r *http.Request) (limit int, offset int64, err error) {
	query := r.URL.Query()

	if s := query.Get(FromParam); s != "" {
		v, convErr := strconv.ParseInt(s, 10, 64)
		if convErr != nil {
			return 0, 0, apperrors.InvalidInput("invalid from parameter: " + s)
		}
		if v < 0 {
			return 0, 0, apperrors.InvalidInput("from must not be negative")
		}
		offset = v
	}

	if s := query.Get(SizeParam); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, apperrors.InvalidInput("invalid size parameter: " + s)
		}
		if v <= 0 {
			return 0, 0, apperrors.InvalidInput("size must be positive")
		}
		limit = v
	}

	return limit, offset, nil
}

// ExtractBool parses a required boolean query parameter.
func ExtractBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, apperrors.InvalidInput("missing " + name + " parameter")
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}
