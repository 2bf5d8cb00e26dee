// Package service holds helpers shared by the gRPC-facing services.
package service

import (
	"strconv"

	svcErr "github.com/oggyb/blinder/internal/errors"
)

// ParseUserID parses a decimal user id carried as a string on the wire.
func ParseUserID(field, raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(field + " must be a valid uint64")
	}
	return id, nil
}

// FormatID renders a numeric id the way it is exposed to clients.
func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
