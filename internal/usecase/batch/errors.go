package batch

import "errors"

var (
	ErrRunCancelled  = errors.New("processing cancelled")
	ErrPipelinePanic = errors.New("pipeline panicked")
)
