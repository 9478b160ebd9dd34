package publisher

import (
	"errors"
	"fmt"
	"strings"
)

const (
	emptyRepositoryNameMessageConstant = "repository name is empty after sanitization"
	pushAuthenticationMessageConstant  = "git push was rejected for authentication reasons"
	creatorMissingMessageConstant      = "publisher repository creator not configured"
	executorMissingMessageConstant     = "publisher git executor not configured"
	fileSystemMissingMessageConstant   = "publisher filesystem not configured"
	ownerMissingMessageConstant        = "publisher repository owner not configured"
	nameConflictErrorTemplateConstant  = "repository names %s are all taken"
	pushErrorTemplateConstant          = "pushing %s failed after %d attempt(s): %v"
	nameListSeparatorConstant          = ", "
)

var (
	// ErrEmptyRepositoryName indicates the title contained no usable characters.
	ErrEmptyRepositoryName = errors.New(emptyRepositoryNameMessageConstant)
	// ErrPushAuthentication indicates git could not authenticate against the remote.
	ErrPushAuthentication = errors.New(pushAuthenticationMessageConstant)
	// ErrCreatorNotConfigured indicates the publisher was constructed without a repository creator.
	ErrCreatorNotConfigured = errors.New(creatorMissingMessageConstant)
	// ErrExecutorNotConfigured indicates the publisher was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates the publisher was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
	// ErrOwnerNotConfigured indicates the publisher has no account to build remote URLs for.
	ErrOwnerNotConfigured = errors.New(ownerMissingMessageConstant)
)

// NameConflictError reports that every attempted repository name already exists.
type NameConflictError struct {
	AttemptedNames []string
}

// Error lists the attempted names.
func (conflictError NameConflictError) Error() string {
	return fmt.Sprintf(nameConflictErrorTemplateConstant, strings.Join(conflictError.AttemptedNames, nameListSeparatorConstant))
}

// PushError reports a push that kept failing after the local repository was rebuilt.
type PushError struct {
	RepositoryName string
	Attempts       int
	Cause          error
}

// Error describes the failed push.
func (pushError PushError) Error() string {
	return fmt.Sprintf(pushErrorTemplateConstant, pushError.RepositoryName, pushError.Attempts, pushError.Cause)
}

// Unwrap exposes the last push failure.
func (pushError PushError) Unwrap() error {
	return pushError.Cause
}

type pushFailure struct {
	cause error
}

func (failure pushFailure) Error() string {
	return failure.cause.Error()
}

func (failure pushFailure) Unwrap() error {
	return failure.cause
}

func unwrapPushFailure(err error) error {
	var failedPush pushFailure
	if errors.As(err, &failedPush) {
		return failedPush.cause
	}
	return err
}
