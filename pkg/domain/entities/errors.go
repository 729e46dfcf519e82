package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is matched by MissingColumnError.
	ErrMissingColumn = errors.New("missing column")
	// ErrUnparsableWeekToken is matched by UnparsableWeekTokenError.
	ErrUnparsableWeekToken = errors.New("unparsable week token")
	// ErrEmptyDataset is returned by summaries that need at least one row.
	ErrEmptyDataset = errors.New("empty dataset")
)

// MissingColumnError reports that none of the accepted names for a required
// column exist in an extract.
type MissingColumnError struct {
	Extract    string
	Candidates []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("extract %s: none of the columns [%s] found",
		e.Extract, strings.Join(e.Candidates, ", "))
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// UnparsableWeekTokenError reports an extract identifier without a usable
// W<ww>-<yy> token.
type UnparsableWeekTokenError struct {
	Identifier string
	Err        error
}

func (e *UnparsableWeekTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no week token in %s: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("no week token in %s (expected Www-yy)", e.Identifier)
}

func (e *UnparsableWeekTokenError) Is(target error) bool {
	return target == ErrUnparsableWeekToken
}

func (e *UnparsableWeekTokenError) Unwrap() error {
	return e.Err
}

// MappingLoadError is fatal: the project/OEM lookup cannot be built without
// both source tables.
type MappingLoadError struct {
	Files []string
	Err   error
}

func (e *MappingLoadError) Error() string {
	return fmt.Sprintf("failed to load OEM mappings from [%s]: %v", strings.Join(e.Files, ", "), e.Err)
}

func (e *MappingLoadError) Unwrap() error {
	return e.Err
}

// IssueKind classifies a per-extract failure that did not abort the batch.
type IssueKind string

const (
	IssueUnparsableWeek IssueKind = "unparsable_week_token"
	IssueMissingColumn  IssueKind = "missing_column"
	IssueUnreadable     IssueKind = "unreadable_extract"
)

// ExtractIssue records an extract that was skipped during a batch run.
type ExtractIssue struct {
	Extract string    `json:"extract"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// NewExtractIssue classifies err for the given extract.
func NewExtractIssue(extract string, err error) ExtractIssue {
	kind := IssueUnreadable
	switch {
	case errors.Is(err, ErrUnparsableWeekToken):
		kind = IssueUnparsableWeek
	case errors.Is(err, ErrMissingColumn):
		kind = IssueMissingColumn
	}
	return ExtractIssue{Extract: extract, Kind: kind, Message: err.Error()}
}
