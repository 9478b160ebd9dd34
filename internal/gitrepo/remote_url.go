package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	httpsProtocolPrefixConstant        = "https://"
	gitUserPrefixConstant              = "git@"
	sshPathDelimiterConstant           = ":"
	gitSuffixConstant                  = ".git"
	remoteURLErrorTemplateConstant     = "%s: %s"
	requiredValueMessageConstant       = "value required"
	invalidWebBaseURLMessageConstant   = "invalid web base url"
	unknownProtocolMessageConstant     = "unsupported remote protocol"
	sshRemoteTemplateConstant          = "%s%s%s%s/%s%s"
	httpsRemoteTemplateConstant        = "%s%s/%s/%s%s"
	remoteFieldHostConstant            = "host"
	remoteFieldOwnerConstant           = "owner"
	remoteFieldRepositoryConstant      = "repository"
	defaultRemoteProtocolValueConstant = "https"
	sshRemoteProtocolValueConstant     = "ssh"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol(sshRemoteProtocolValueConstant)
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol(defaultRemoteProtocolValueConstant)
)

// RemoteURL represents a structured git remote URL for a hosted repository.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLError indicates a remote could not be described or formatted.
type RemoteURLError struct {
	Input   string
	Message string
}

// Error describes the failure.
func (remoteError RemoteURLError) Error() string {
	return fmt.Sprintf(remoteURLErrorTemplateConstant, remoteError.Input, remoteError.Message)
}

// ParseRemoteProtocol normalizes a configured protocol value. Blank values select HTTPS.
func ParseRemoteProtocol(protocolValue string) (RemoteProtocol, error) {
	switch strings.ToLower(strings.TrimSpace(protocolValue)) {
	case "", defaultRemoteProtocolValueConstant:
		return RemoteProtocolHTTPS, nil
	case sshRemoteProtocolValueConstant:
		return RemoteProtocolSSH, nil
	default:
		return "", RemoteURLError{Input: protocolValue, Message: unknownProtocolMessageConstant}
	}
}

// HostFromWebBaseURL extracts the host name from a hosting web address such as https://github.com.
func HostFromWebBaseURL(webBaseURL string) (string, error) {
	trimmedURL := strings.TrimSpace(webBaseURL)
	if !strings.Contains(trimmedURL, "://") {
		trimmedURL = httpsProtocolPrefixConstant + trimmedURL
	}
	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil || len(parsedURL.Host) == 0 {
		return "", RemoteURLError{Input: webBaseURL, Message: invalidWebBaseURLMessageConstant}
	}
	return parsedURL.Host, nil
}

// FormatRemoteURL creates a textual remote URL from a structured representation.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	requiredFields := []struct {
		name  string
		value string
	}{
		{name: remoteFieldHostConstant, value: remote.Host},
		{name: remoteFieldOwnerConstant, value: remote.Owner},
		{name: remoteFieldRepositoryConstant, value: remote.Repository},
	}
	for _, requiredField := range requiredFields {
		if len(strings.TrimSpace(requiredField.value)) == 0 {
			return "", RemoteURLError{Input: requiredField.name, Message: requiredValueMessageConstant}
		}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshRemoteTemplateConstant, gitUserPrefixConstant, remote.Host, sshPathDelimiterConstant, remote.Owner, remote.Repository, gitSuffixConstant), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsRemoteTemplateConstant, httpsProtocolPrefixConstant, remote.Host, remote.Owner, remote.Repository, gitSuffixConstant), nil
	default:
		return "", RemoteURLError{Input: string(remote.Protocol), Message: unknownProtocolMessageConstant}
	}
}
