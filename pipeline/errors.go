package pipeline

import "errors"

// ErrConfig is returned for invalid [Config] values: an empty output
// directory, an unknown extension profile, or a malformed config file.
var ErrConfig = errors.New("pipeline: invalid configuration")

// ErrStrict is returned by [Pipeline.Run] when strict mode is on and the
// run produced at least one non-fatal warning.
var ErrStrict = errors.New("pipeline: warnings treated as errors in strict mode")
