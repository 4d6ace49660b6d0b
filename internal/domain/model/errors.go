package model

import "errors"

// ErrUnknownDataType is returned for a data type selector that names neither family.
var ErrUnknownDataType = errors.New("unknown data type")
