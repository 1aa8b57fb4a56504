package domain

import "errors"

var (
	ErrCatalogLoad            = errors.New("catalog load failed")
	ErrEmptyCatalog           = errors.New("catalog has no items")
	ErrInvalidScore           = errors.New("invalid score")
	ErrMissingPatientIdentity = errors.New("patient name is required")
	ErrExportEncoding         = errors.New("export encoding failed")
)
