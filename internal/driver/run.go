package driver

import (
	"fmt"

	"zenc/internal/vm"
)

// Run interprets a compiled unit and returns its exit status.
func (s *Session) Run(res *Result, rt vm.Runtime, opts vm.Options) (int, error) {
	if res == nil || res.Module == nil {
		return 0, fmt.Errorf("run: no module (compile with NeedModule)")
	}
	if res.Err != nil {
		return 0, res.Err
	}
	if opts.Tracer == nil {
		opts.Tracer = s.opts.Tracer
	}
	return vm.New(res.Module, rt, opts).RunMain()
}
