package workspace

import "errors"

var (
	// ErrWorkspaceIDRequired indicates an operation was given an empty workspace id.
	ErrWorkspaceIDRequired = errors.New("workspace id is required")
	// ErrDocumentIDRequired indicates an operation was given an empty document id.
	ErrDocumentIDRequired = errors.New("document id is required")
	// ErrFilePathRequired indicates addDocument was given an empty file path.
	ErrFilePathRequired = errors.New("file path is required")
	// ErrNameRequired indicates createWorkspace was given an empty name.
	ErrNameRequired = errors.New("workspace name is required")
	// ErrInvalidMode indicates an unknown layout mode was requested.
	ErrInvalidMode = errors.New("invalid layout mode")
	// ErrInvalidGeometry indicates a position or dimension that is not a finite number.
	ErrInvalidGeometry = errors.New("invalid position or dimensions")
	// ErrDocumentNotFound indicates the requested document is not in the registry.
	ErrDocumentNotFound = errors.New("document not found")
)
