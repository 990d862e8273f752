package usecase

import "errors"

// ErrURLRequired はURLが空の場合に返されます。
var ErrURLRequired = errors.New("url is required")
