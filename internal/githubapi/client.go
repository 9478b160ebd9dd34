package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"
)

const (
	defaultAPIBaseURLConstant               = "https://api.github.com/"
	userScopedOwnerConstant                 = ""
	baseURLFieldNameConstant                = "base_url"
	repositoryNameFieldNameConstant         = "repository_name"
	tokenFieldNameConstant                  = "token"
	requiredValueMessageConstant            = "value required"
	unauthorizedMessageConstant             = "GitHub rejected the token"
	unauthorizedTemplateConstant            = "%w (status %d): %s"
	unexpectedStatusTemplateConstant        = "unexpected status %d: %s"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	createRepositoryOperationNameConstant   = OperationName("CreateRepository")
	authenticatedUserOperationNameConstant  = OperationName("ResolveAuthenticatedUser")
)

// OperationName describes a named GitHub API workflow supported by the client.
type OperationName string

// CreationStatus summarizes the outcome of a repository creation request.
type CreationStatus int

// Repository creation outcomes.
const (
	// CreationStatusCreated means the repository was created (HTTP 201).
	CreationStatusCreated CreationStatus = iota
	// CreationStatusNameTaken means the name is already in use (HTTP 422).
	CreationStatusNameTaken
	// CreationStatusRejected means any other non-authentication response.
	CreationStatusRejected
)

// ErrUnauthorized indicates GitHub rejected the credentials (HTTP 401 or 403).
var ErrUnauthorized = errors.New(unauthorizedMessageConstant)

// Configuration describes how to reach the GitHub REST API.
type Configuration struct {
	BaseURL        string
	Token          string
	RequestTimeout time.Duration
}

// CreateRepositoryRequest describes the repository to create for the authenticated user.
type CreateRepositoryRequest struct {
	Name    string
	Private bool
}

// Repository contains the fields of a created repository that the publisher relies on.
type Repository struct {
	Name       string
	FullName   string
	OwnerLogin string
	HTMLURL    string
}

// CreateRepositoryResult reports the outcome of CreateRepository.
type CreateRepositoryResult struct {
	Status     CreationStatus
	StatusCode int
	Message    string
	Repository Repository
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps transport and authorization issues for GitHub API operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates a successful response whose body could not be decoded.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// Client issues GitHub REST API requests through go-github with a bearer token.
type Client struct {
	restClient *github.Client
}

// NewClient constructs a GitHub API client. A nil httpClient selects an *http.Client honoring RequestTimeout.
func NewClient(httpClient *http.Client, configuration Configuration) (*Client, error) {
	token := strings.TrimSpace(configuration.Token)
	if len(token) == 0 {
		return nil, InvalidInputError{FieldName: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.RequestTimeout}
	}

	baseURL, baseURLError := parseBaseURL(configuration.BaseURL)
	if baseURLError != nil {
		return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: baseURLError.Error()}
	}

	restClient := github.NewClient(httpClient).WithAuthToken(token)
	restClient.BaseURL = baseURL
	return &Client{restClient: restClient}, nil
}

// parseBaseURL keeps the trailing slash go-github resolves relative paths against.
func parseBaseURL(rawBaseURL string) (*url.URL, error) {
	trimmedBaseURL := strings.TrimSpace(rawBaseURL)
	if len(trimmedBaseURL) == 0 {
		trimmedBaseURL = defaultAPIBaseURLConstant
	}
	if !strings.HasSuffix(trimmedBaseURL, "/") {
		trimmedBaseURL += "/"
	}
	return url.Parse(trimmedBaseURL)
}

// CreateRepository creates a repository owned by the authenticated user.
// Authentication failures return an error matching ErrUnauthorized; name conflicts and other
// rejections are reported through the result status without an error.
func (client *Client) CreateRepository(executionContext context.Context, request CreateRepositoryRequest) (CreateRepositoryResult, error) {
	repositoryName := strings.TrimSpace(request.Name)
	if len(repositoryName) == 0 {
		return CreateRepositoryResult{}, InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repository, response, createError := client.restClient.Repositories.Create(executionContext, userScopedOwnerConstant, &github.Repository{
		Name:    github.Ptr(repositoryName),
		Private: github.Ptr(request.Private),
	})
	statusCode := responseStatusCode(response)
	if createError != nil && statusCode == 0 {
		return CreateRepositoryResult{}, OperationError{Operation: createRepositoryOperationNameConstant, Cause: createError}
	}

	switch statusCode {
	case http.StatusCreated:
		if createError != nil {
			return CreateRepositoryResult{}, ResponseDecodingError{Operation: createRepositoryOperationNameConstant, Cause: createError}
		}
		return CreateRepositoryResult{
			Status:     CreationStatusCreated,
			StatusCode: statusCode,
			Repository: Repository{
				Name:       repository.GetName(),
				FullName:   repository.GetFullName(),
				OwnerLogin: repository.GetOwner().GetLogin(),
				HTMLURL:    repository.GetHTMLURL(),
			},
		}, nil
	case http.StatusUnprocessableEntity:
		return CreateRepositoryResult{Status: CreationStatusNameTaken, StatusCode: statusCode, Message: describeError(statusCode, createError)}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return CreateRepositoryResult{}, OperationError{
			Operation: createRepositoryOperationNameConstant,
			Cause:     fmt.Errorf(unauthorizedTemplateConstant, ErrUnauthorized, statusCode, describeError(statusCode, createError)),
		}
	default:
		return CreateRepositoryResult{Status: CreationStatusRejected, StatusCode: statusCode, Message: describeError(statusCode, createError)}, nil
	}
}

// AuthenticatedUser returns the login of the token's owner.
func (client *Client) AuthenticatedUser(executionContext context.Context) (string, error) {
	user, response, lookupError := client.restClient.Users.Get(executionContext, userScopedOwnerConstant)
	if lookupError == nil {
		return user.GetLogin(), nil
	}

	statusCode := responseStatusCode(response)
	switch {
	case statusCode == 0:
		return "", OperationError{Operation: authenticatedUserOperationNameConstant, Cause: lookupError}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return "", OperationError{
			Operation: authenticatedUserOperationNameConstant,
			Cause:     fmt.Errorf(unauthorizedTemplateConstant, ErrUnauthorized, statusCode, describeError(statusCode, lookupError)),
		}
	case statusCode == http.StatusOK:
		return "", ResponseDecodingError{Operation: authenticatedUserOperationNameConstant, Cause: lookupError}
	default:
		return "", OperationError{
			Operation: authenticatedUserOperationNameConstant,
			Cause:     fmt.Errorf(unexpectedStatusTemplateConstant, statusCode, describeError(statusCode, lookupError)),
		}
	}
}

func responseStatusCode(response *github.Response) int {
	if response == nil || response.Response == nil {
		return 0
	}
	return response.StatusCode
}

func describeError(statusCode int, responseError error) string {
	var errorResponse *github.ErrorResponse
	if errors.As(responseError, &errorResponse) && len(errorResponse.Message) > 0 {
		return errorResponse.Message
	}
	return http.StatusText(statusCode)
}
