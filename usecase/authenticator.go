package usecase

import (
	"context"
	"fmt"
	"time"

	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/infrastructure/logger"
)

// defaultTokenMargin is subtracted from the server-declared token lifetime
// so a cached token never outlives its real validity mid-request.
const defaultTokenMargin = 30 * time.Second

// IAuthenticator builds an authorized remote facade for a credential profile.
type IAuthenticator interface {
	Authorize(ctx context.Context, profile *model.CredentialProfile) (repository.IVideoCloud, error)
}

// Authenticator caches access tokens in the expiring key/value store and is
// the only component allowed to mutate that cache. Connection status is
// mirrored onto the profile for display.
type Authenticator struct {
	profiles repository.IProfileStore
	tokens   repository.IKeyValueStore
	oauth    repository.ITokenExchanger
	factory  repository.ClientFactory
	margin   time.Duration
}

func NewAuthenticator(
	profiles repository.IProfileStore,
	tokens repository.IKeyValueStore,
	oauth repository.ITokenExchanger,
	factory repository.ClientFactory,
) *Authenticator {
	return &Authenticator{
		profiles: profiles,
		tokens:   tokens,
		oauth:    oauth,
		factory:  factory,
		margin:   defaultTokenMargin,
	}
}

// WithTokenMargin overrides the safety margin subtracted from the token
// lifetime before caching.
func (a *Authenticator) WithTokenMargin(margin time.Duration) *Authenticator {
	if margin > 0 {
		a.margin = margin
	}
	return a
}

func tokenKey(profileID int64) string {
	return fmt.Sprintf("token:profile:%d", profileID)
}

// Authorize returns a validated client for the profile. A 401 on the
// validation read clears the cached token and retries exactly once; the
// retry budget is loop state, not recursion.
func (a *Authenticator) Authorize(ctx context.Context, profile *model.CredentialProfile) (repository.IVideoCloud, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, err := a.token(ctx, profile)
		if err != nil {
			a.recordStatus(ctx, profile, model.ProfileStatusError, err.Error())
			return nil, &AuthenticationError{Message: err.Error()}
		}

		client := a.factory(profile.AccountID, token)

		// One harmless read confirms the account id and classifies the
		// failure mode before any worker trusts this client.
		if _, err := client.CountVideos(ctx); err != nil {
			if IsRemoteUnauthorized(err) && attempt == 0 {
				logger.GetLogger().WithField("profile", profile.ID).
					Info("cached token rejected, re-authorizing once")
				if delErr := a.tokens.Delete(ctx, tokenKey(profile.ID)); delErr != nil {
					logger.GetLogger().WithField("error", delErr).Warn("failed clearing token cache")
				}
				lastErr = err
				continue
			}
			if IsRemoteUnauthorized(err) {
				a.recordStatus(ctx, profile, model.ProfileStatusError, err.Error())
				return nil, &AuthenticationError{Message: err.Error()}
			}
			return nil, fmt.Errorf("validate client: %w", err)
		}

		a.recordStatus(ctx, profile, model.ProfileStatusOK, "")
		return client, nil
	}
	a.recordStatus(ctx, profile, model.ProfileStatusError, lastErr.Error())
	return nil, &AuthenticationError{Message: lastErr.Error()}
}

// token returns the cached access token or exchanges credentials for a new
// one, caching it with the margin-reduced TTL.
func (a *Authenticator) token(ctx context.Context, profile *model.CredentialProfile) (string, error) {
	cached, ok, err := a.tokens.Get(ctx, tokenKey(profile.ID))
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("token cache read failed, exchanging fresh")
	}
	if ok && cached != "" {
		return cached, nil
	}

	resp, err := a.oauth.Exchange(ctx, profile.ClientID, profile.ClientSecret)
	if err != nil {
		return "", fmt.Errorf("exchange credentials: %w", err)
	}
	ttl := time.Duration(resp.ExpiresIn)*time.Second - a.margin
	if ttl > 0 {
		if err := a.tokens.Set(ctx, tokenKey(profile.ID), resp.AccessToken, ttl); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed caching access token")
		}
	}
	return resp.AccessToken, nil
}

func (a *Authenticator) recordStatus(ctx context.Context, profile *model.CredentialProfile, status model.ProfileStatus, message string) {
	if profile.Status == status && profile.StatusMessage == message {
		return
	}
	profile.Status = status
	profile.StatusMessage = message
	if err := a.profiles.Save(ctx, profile); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed persisting profile status")
	}
}
