package session

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBusy is returned when an AI action starts while another one runs.
	ErrBusy = errors.New("another AI action is in progress")
	// ErrMissingInput is returned when the session lacks data an action needs.
	ErrMissingInput = errors.New("missing input")
	// ErrNoGenerator is returned by AI actions on a session built without a generator.
	ErrNoGenerator = errors.New("no text generator configured")
)

// GenerationError reports a failed call to the text generator. The document
// is left as it was before the call.
type GenerationError struct {
	// Notice is the message to show the user.
	Notice string
	Err    error
}

func (e *GenerationError) Error() (s string) {
	s = fmt.Sprintf("%s: %v", e.Notice, e.Err)
	return s
}

// Unwrap returns the generator error.
func (e *GenerationError) Unwrap() (err error) {
	err = e.Err
	return err
}

// Cause returns the generator error for errors.Cause.
func (e *GenerationError) Cause() (err error) {
	err = e.Err
	return err
}

func generationFailed(action string, err error) (genErr *GenerationError) {
	genErr = &GenerationError{
		Notice: fmt.Sprintf("An error occurred %s. Please try again.", action),
		Err:    err,
	}
	return genErr
}

// missingInput joins the missing items into one readable request.
func missingInput(items ...string) (err error) {
	var list string
	switch len(items) {
	case 0:
		return err
	case 1:
		list = items[0]
	case 2:
		list = items[0] + " and " + items[1]
	default:
		list = strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
	err = errors.Wrapf(ErrMissingInput, "please add %s", list)
	return err
}
