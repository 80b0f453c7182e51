// Copyright (C) 2021-2023, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import "fmt"

// Errs tracks the first error encountered across a sequence of fallible
// calls, so that callers can batch operations and check once at the end.
type Errs struct{ Err error }

func (errs *Errs) Errored() bool {
	return errs.Err != nil
}

func (errs *Errs) Add(errors ...error) {
	if errs.Err == nil {
		for _, err := range errors {
			if err != nil {
				errs.Err = err
				break
			}
		}
	}
}

func (errs *Errs) AddContext(msg string, err error) {
	if errs.Err == nil && err != nil {
		errs.Err = fmt.Errorf("%s: %w", msg, err)
	}
}
