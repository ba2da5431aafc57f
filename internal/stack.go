package internal

// ExceptionStack records the errors met during one lifecycle, oldest first.
// It is owned by a single Lifecycle and is not safe for concurrent use.
type ExceptionStack struct {
	errs []error
}

// Push appends err. Nil errors are ignored.
func (s *ExceptionStack) Push(err error) {
	if err != nil {
		s.errs = append(s.errs, err)
	}
}

// Last returns the most recent error, or nil when the stack is empty.
func (s *ExceptionStack) Last() error {
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[len(s.errs)-1]
}

// All returns a copy of the recorded errors.
func (s *ExceptionStack) All() []error {
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

func (s *ExceptionStack) Len() int {
	return len(s.errs)
}
