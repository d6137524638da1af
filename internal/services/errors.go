// Package services defines the business logic for accounts, journal entries,
// conversation threads, and insights. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Account-related errors.
var (
	// ErrUsernameTaken indicates that the requested username already has an
	// account.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrPasswordMismatch is returned at signup when the password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrPasswordTooShort is returned at signup when the password has fewer
	// than six characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrBadCredentials indicates an unknown username or a wrong password.
	// The two cases are deliberately indistinguishable.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrMissingFields is returned when a required signup field is blank.
	ErrMissingFields = errors.New("username and password are required")
)

// Entry- and thread-related errors.
var (
	// ErrEntryNotFound indicates that the requested journal entry does not
	// exist or is not accessible to the current user.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrThreadNotFound indicates that the requested conversation thread does
	// not exist or is not accessible to the current user.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrEmptyJournal is returned when a reflect submission carries no
	// journal text and no mood notes.
	ErrEmptyJournal = errors.New("journal entry is empty")

	// ErrEmptyMessage is returned when a conversational turn contains an
	// empty message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a submitted text exceeds the maximum
	// configured length limit.
	ErrTooLong = errors.New("text too long")

	// ErrInvalidMood is returned when a check-in names a mood outside the
	// five labeled levels.
	ErrInvalidMood = errors.New("unknown mood label")

	// ErrInvalidSetting is returned when a therapy-mode setting is outside
	// its enumerated option set.
	ErrInvalidSetting = errors.New("unknown therapy setting value")

	// ErrExportFormat is returned for an unsupported export format.
	ErrExportFormat = errors.New("unsupported export format")
)
