// Package videocloud is the HTTP facade over the remote video-management
// service: CMS API, Ingest API and the OAuth token endpoint.
package videocloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"video-sync/domain/dto"
	"video-sync/domain/repository"

	"golang.org/x/oauth2/clientcredentials"
)

// Client implements repository.IVideoCloud for one account.
type Client struct {
	httpClient  *http.Client
	cmsBase     string
	ingestBase  string
	accountID   string
	accessToken string
}

// Config holds the service base URLs shared by all accounts.
type Config struct {
	OAuthBase  string
	CMSBase    string
	IngestBase string
}

// NewClient builds an authorized facade for accountID using accessToken.
func NewClient(cfg Config, accountID, accessToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		cmsBase:     cfg.CMSBase,
		ingestBase:  cfg.IngestBase,
		accountID:   accountID,
		accessToken: accessToken,
	}
}

// Factory returns a repository.ClientFactory bound to cfg.
func Factory(cfg Config) repository.ClientFactory {
	return func(accountID, accessToken string) repository.IVideoCloud {
		return NewClient(cfg, accountID, accessToken)
	}
}

// OAuthClient implements repository.ITokenExchanger against the token endpoint.
type OAuthClient struct {
	base string
}

func NewOAuthClient(base string) *OAuthClient { return &OAuthClient{base: base} }

// Exchange trades client credentials for a short-lived access token.
func (o *OAuthClient) Exchange(ctx context.Context, clientID, clientSecret string) (*dto.TokenResponse, error) {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     o.base + "/access_token",
	}
	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	expiresIn := int64(time.Until(tok.Expiry).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &dto.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   expiresIn,
	}, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &dto.APIError{StatusCode: resp.StatusCode, Message: string(raw)}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) cmsURL(path string) string {
	return fmt.Sprintf("%s/accounts/%s%s", c.cmsBase, c.accountID, path)
}

func (c *Client) CountVideos(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/counts/videos"), nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ListVideos(ctx context.Context, offset, limit int) ([]dto.RemoteVideo, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprint(offset))
	q.Set("limit", fmt.Sprint(limit))
	q.Set("sort", "created_at")
	var out []dto.RemoteVideo
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/videos?"+q.Encode()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVideo(ctx context.Context, id string) (*dto.RemoteVideo, error) {
	var out dto.RemoteVideo
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/videos/"+url.PathEscape(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateVideo(ctx context.Context, fields map[string]any) (*dto.RemoteVideo, error) {
	var out dto.RemoteVideo
	if err := c.do(ctx, http.MethodPost, c.cmsURL("/videos"), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVideo(ctx context.Context, id string, fields map[string]any) (*dto.RemoteVideo, error) {
	var out dto.RemoteVideo
	if err := c.do(ctx, http.MethodPatch, c.cmsURL("/videos/"+url.PathEscape(id)), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.cmsURL("/videos/"+url.PathEscape(id)), nil, nil)
}

func (c *Client) GetVideoImages(ctx context.Context, id string) (*dto.RemoteImages, error) {
	var out dto.RemoteImages
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/videos/"+url.PathEscape(id)+"/images"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CountPlaylists(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/counts/playlists"), nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ListPlaylists(ctx context.Context, offset, limit int) ([]dto.RemotePlaylist, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprint(offset))
	q.Set("limit", fmt.Sprint(limit))
	var out []dto.RemotePlaylist
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/playlists?"+q.Encode()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPlaylist(ctx context.Context, id string) (*dto.RemotePlaylist, error) {
	var out dto.RemotePlaylist
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/playlists/"+url.PathEscape(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, fields map[string]any) (*dto.RemotePlaylist, error) {
	var out dto.RemotePlaylist
	if err := c.do(ctx, http.MethodPost, c.cmsURL("/playlists"), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePlaylist(ctx context.Context, id string, fields map[string]any) (*dto.RemotePlaylist, error) {
	var out dto.RemotePlaylist
	if err := c.do(ctx, http.MethodPatch, c.cmsURL("/playlists/"+url.PathEscape(id)), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.cmsURL("/playlists/"+url.PathEscape(id)), nil, nil)
}

func (c *Client) ListPlayers(ctx context.Context) ([]dto.RemotePlayer, error) {
	var out struct {
		Items []dto.RemotePlayer `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/players"), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetPlayer(ctx context.Context, id string) (*dto.RemotePlayer, error) {
	var out dto.RemotePlayer
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/players/"+url.PathEscape(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCustomFields(ctx context.Context) (*dto.CustomFieldList, error) {
	var out dto.CustomFieldList
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/video_fields"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSubscriptions(ctx context.Context) ([]dto.RemoteSubscription, error) {
	var out []dto.RemoteSubscription
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/subscriptions"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSubscription(ctx context.Context, id string) (*dto.RemoteSubscription, error) {
	var out dto.RemoteSubscription
	if err := c.do(ctx, http.MethodGet, c.cmsURL("/subscriptions/"+url.PathEscape(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSubscription(ctx context.Context, endpoint string, events []string) (*dto.RemoteSubscription, error) {
	body := map[string]any{"endpoint": endpoint, "events": events}
	var out dto.RemoteSubscription
	if err := c.do(ctx, http.MethodPost, c.cmsURL("/subscriptions"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.cmsURL("/subscriptions/"+url.PathEscape(id)), nil, nil)
}

// SubmitIngest posts the composed ingest request for one video and returns
// the remote job id.
func (c *Client) SubmitIngest(ctx context.Context, videoID string, req *dto.IngestRequest) (string, error) {
	rawURL := fmt.Sprintf("%s/accounts/%s/videos/%s/ingest-requests", c.ingestBase, c.accountID, url.PathEscape(videoID))
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, rawURL, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
