package userstore

import (
	"regexp"
)

// Identifiers (project, collection and column names) end up verbatim in
// generated query text, so they are restricted to a safe character set
// before any statement is built.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const maxIdentifierLength = 250

func validIdentifier(name string) bool {
	return len(name) <= maxIdentifierLength && identifierPattern.MatchString(name)
}

// CheckProject validates a project identifier.
func CheckProject(project string) error {
	if !validIdentifier(project) {
		return ErrInvalidProjectName
	}

	return nil
}

// CheckCollection validates an event collection identifier.
func CheckCollection(collection string) error {
	if !validIdentifier(collection) {
		return ErrInvalidCollectionName
	}

	return nil
}

// CheckTableColumn validates a column/property identifier.
func CheckTableColumn(column string) error {
	if !validIdentifier(column) {
		return ErrInvalidColumnName
	}

	return nil
}
