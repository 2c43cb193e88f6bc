package service

import "errors"

var errEmptyTitle = errors.New("title is empty after sanitization")
