/*
Package fwkerr implements the framework's error taxonomy.

Status is the closed set of symbolic outcome kinds: Success and
Pending are non-error outcomes (Pending in particular must never be
treated as failure — a handler returning it has accepted the request and
will respond asynchronously); the rest wrap into an *Error that callers
can test with errors.Is against the package-level sentinels below.

	err := scheduler.Submit(...)
	if errors.Is(err, fwkerr.ErrState) {
	    // wrong stage
	}
*/
package fwkerr
