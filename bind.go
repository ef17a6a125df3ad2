// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbgone

import (
	"fmt"

	"github.com/canonical/sqlbgone/sqltype"
)

// CheckArgs checks that args can be bound, in order, to the placeholders of
// the statement. A nil argument is accepted for any placeholder.
func (sig *Signature) CheckArgs(args ...any) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("invalid input parameter: %w", err)
		}
	}()

	if len(args) != len(sig.Inputs) {
		return fmt.Errorf("need %d arguments, got %d", len(sig.Inputs), len(args))
	}
	for i, arg := range args {
		if err := sqltype.CheckValue(sig.Inputs[i], arg); err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
	}
	return nil
}
