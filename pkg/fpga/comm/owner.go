package comm

import (
	"fmt"
	"sync"

	fx "github.com/robotalks/hostcomm/pkg/framework"
)

// Opener opens the transport to the device.
type Opener func() (Transport, error)

// Owner hands out the single Session of a transport.
// The transport is an exclusive resource: the session is issued at most once.
type Owner struct {
	open  Opener
	lock  sync.Mutex
	taken bool
}

// NewOwner creates an Owner which opens the transport on Take.
func NewOwner(open Opener) *Owner {
	return &Owner{open: open}
}

// Take opens the transport and returns the session.
// Any call after a successful Take fails with ErrSessionTaken.
func (o *Owner) Take() (*Session, error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.taken {
		return nil, ErrSessionTaken
	}
	t, err := o.open()
	if err != nil {
		return nil, err
	}
	o.taken = true
	return NewSession(t), nil
}

// MustTake is Take which panics on failure.
// Taking the session twice is a programming error.
func (o *Owner) MustTake() *Session {
	s, err := o.Take()
	if err != nil {
		panic(fmt.Sprintf("take FPGA session: %v", err))
	}
	return s
}

// Use takes the session, runs fn and closes the session on every exit path.
// The returned error joins the error of fn with teardown failures.
func (o *Owner) Use(fn func(*Session) error) (err error) {
	s, err := o.Take()
	if err != nil {
		return err
	}
	defer func() {
		var errs fx.AggregatedError
		err = errs.Add(err, s.Close()).Aggregate()
	}()
	return fn(s)
}
