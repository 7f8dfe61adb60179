package hdl

import "errors"

var ErrInternal = errors.New("internal error")
var ErrDecodeRequest = errors.New("decode request")

var ErrNoToken = errors.New("missing bearer token")
var ErrInvalidToken = errors.New("invalid access token")
var ErrFailedToGetUUID = errors.New("failed to get uid from context")

var ErrTooManyRefreshes = errors.New("Too many refresh requests. Please try again later.")
