package repository

import (
	"context"

	"efris-bridge/pkg/logger"
)

// MethodFilter answers blocked methods with an empty result instead of calling the ERP.
type MethodFilter struct {
	next    Caller
	blocked map[string]struct{}
	log     *logger.Logger
}

// NewMethodFilter wraps next once; an existing MethodFilter gains the extra
// methods instead of being wrapped again.
func NewMethodFilter(next Caller, blocked []string, log *logger.Logger) Caller {
	if f, ok := next.(*MethodFilter); ok {
		for _, m := range blocked {
			f.blocked[m] = struct{}{}
		}
		return f
	}

	set := make(map[string]struct{}, len(blocked))
	for _, m := range blocked {
		set[m] = struct{}{}
	}
	return &MethodFilter{next: next, blocked: set, log: log}
}

func (f *MethodFilter) Call(ctx context.Context, method string, args any, out any) error {
	if _, ok := f.blocked[method]; ok {
		f.log.Debug("Blocked ERP method call", "method", method)
		return nil
	}
	return f.next.Call(ctx, method, args, out)
}
