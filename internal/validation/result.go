package validation

import "github.com/syngenta/acai-ts-sub001/internal/records"

// Result wraps one classified record with the validity state assigned by the
// validation step. Records start valid and are never discarded mid-pipeline;
// an explicit filter drops invalid results at the end.
type Result struct {
	Record records.Record
	Valid  bool
	Errors []ErrorEntry
}

func NewResult(rec records.Record) *Result {
	return &Result{Record: rec, Valid: true}
}

// Invalidate marks the result invalid and appends the failure entries.
func (r *Result) Invalidate(entries []ErrorEntry) {
	r.Valid = false
	r.Errors = append(r.Errors, entries...)
}
