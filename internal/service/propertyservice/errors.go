package propertyservice

import "errors"

// ErrNotFound is returned when a record does not exist or belongs to another manager
var ErrNotFound = errors.New("not found")

// ErrUnknownUnit is returned when a maintenance record names a unit outside its property
var ErrUnknownUnit = errors.New("unit does not belong to property")
