package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by every Repository implementation when a record
// does not exist. Match it with errors.Is.
var ErrNotFound = goerr.New("not found")
