package fmerror

import "fmt"

// Error is an error reported by FileMaker Server itself, via the
// <error code="..."/> node of an fmresultset response.
type Error struct {
	Code int
}

func (e Error) Error() string {
	if desc, ok := codes[e.Code]; ok {
		return fmt.Sprintf("%s (%d)", desc, e.Code)
	}
	return fmt.Sprintf(
		"filemaker error code = %d; for a list of error codes, visit: "+
			"https://support.claris.com/s/article/Error-codes-for-Custom-Web-Publishing-1503692934814",
		e.Code,
	)
}

// Description returns the published description of the error code,
// or "" if the code is not in the table.
func (e Error) Description() string {
	return codes[e.Code]
}

const CodeNoMatch = 401

// IsNoMatch reports whether err is the FileMaker "no records match the
// request" error. Find commands return it instead of an empty result set.
func IsNoMatch(err error) bool {
	fmerr, ok := err.(Error)
	return ok && fmerr.Code == CodeNoMatch
}
