package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"video-sync/domain/dto"
)

// AuthenticationError marks bad credentials; surfaced to the admin, never
// retried beyond the authenticator's one-shot 401 re-authorization.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// ConfigurationError marks a task that can never succeed as written, e.g. a
// brand-new remote object arriving without an owning profile id.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// DependencyMissingError marks a reference to a record that has not been
// synced yet. The task is released for redelivery; it succeeds once the
// dependency's own sync task has run.
type DependencyMissingError struct {
	Kind     string
	RemoteID string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("dependency missing: %s %q not synced yet", e.Kind, e.RemoteID)
}

// IsRemoteNotFound reports whether err is a remote 404. Delete-detection
// treats this as a result, not a failure.
func IsRemoteNotFound(err error) bool {
	var apiErr *dto.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRemoteUnauthorized reports whether err is a remote 401. The queue treats
// the item as handled: the credential is broken, not the item.
func IsRemoteUnauthorized(err error) bool {
	var apiErr *dto.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func IsDependencyMissing(err error) bool {
	var depErr *DependencyMissingError
	return errors.As(err, &depErr)
}

func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
