package service

type ErrExecutionQueueFull struct{}

func (e ErrExecutionQueueFull) Error() string {
	return "execution queue is full"
}

func NewErrExecutionQueueFull() *ErrExecutionQueueFull {
	return &ErrExecutionQueueFull{}
}

type ExecutionCancelError struct {
	Message string
}

func (ece ExecutionCancelError) Error() string {
	return ece.Message
}
