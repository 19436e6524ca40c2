package cluster

import "errors"

// ErrConfiguration indicates selection parameters or data that cannot
// produce a valid clustering, including a sweep with no valid score.
var ErrConfiguration = errors.New("invalid cluster configuration")
