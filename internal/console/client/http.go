package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/tokens"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
)

const apiPrefix = "/api/v1"

// pendingRefresh is a one-shot future: the goroutine that created it closes
// done after writing err; everyone else just waits.
type pendingRefresh struct {
	done chan struct{}
	err  error
}

// HTTPClient talks JSON over HTTP to the authoritative store.
//
// Refresh is single-flight: when several in-flight requests all hit an
// expired access token, the first one performs the refresh round trip and the
// rest block on the same pendingRefresh, then retry with the new credential.
type HTTPClient struct {
	baseURL  string
	tenantID string
	http     *http.Client
	tokens   *tokens.Store
	log      logging.Logger

	refreshMu sync.Mutex
	refresh   *pendingRefresh
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, tenantID string, ts *tokens.Store, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		tenantID: tenantID,
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   ts,
		log:      log.With("component", "httpclient"),
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/login", api.LoginRequest{Username: username, Password: password}, &out, false)
	return out, err
}

func (c *HTTPClient) VerifyTwoFactor(ctx context.Context, challengeID, code string) (api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/2fa/verify", api.TwoFactorVerifyRequest{ChallengeID: challengeID, Code: code}, &out, false)
	return out, err
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	return c.call(ctx, http.MethodPost, apiPrefix+"/auth/logout", api.LogoutRequest{RefreshToken: refreshToken}, nil)
}

func (c *HTTPClient) Session(ctx context.Context) (api.SessionResponse, error) {
	var out api.SessionResponse
	err := c.call(ctx, http.MethodGet, apiPrefix+"/auth/session", nil, &out)
	return out, err
}

func (c *HTTPClient) Bootstrap(ctx context.Context) (domain.BootstrapSnapshot, error) {
	var out domain.BootstrapSnapshot
	err := c.call(ctx, http.MethodGet, apiPrefix+"/admin/bootstrap", nil, &out)
	return out, err
}

func (c *HTTPClient) VerifyStepUp(ctx context.Context, action common.StepUpAction, code string) (api.StepUpResponse, error) {
	var out api.StepUpResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/auth/step-up", api.StepUpRequest{Action: action, Code: code}, &out)
	return out, err
}

func (c *HTTPClient) StartImpersonation(ctx context.Context, targetUserID, reason string) (api.ImpersonateResponse, error) {
	var out api.ImpersonateResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/impersonate", api.ImpersonateRequest{TargetUserID: targetUserID, Reason: reason}, &out)
	return out, err
}

func (c *HTTPClient) StopImpersonation(ctx context.Context) (api.ImpersonateResponse, error) {
	var out api.ImpersonateResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/impersonate/stop", nil, &out)
	return out, err
}

func (c *HTTPClient) PatchFeatureFlag(ctx context.Context, key string, req api.FeatureFlagPatchRequest) (domain.FeatureFlagRecord, error) {
	var out domain.FeatureFlagRecord
	err := c.call(ctx, http.MethodPatch, apiPrefix+"/admin/feature-flags/"+url.PathEscape(key), req, &out)
	return out, err
}

func (c *HTTPClient) PatchConfigItem(ctx context.Context, key string, req api.ConfigItemPatchRequest) (domain.ConfigItem, error) {
	var out domain.ConfigItem
	err := c.call(ctx, http.MethodPatch, apiPrefix+"/admin/config/"+url.PathEscape(key), req, &out)
	return out, err
}

func (c *HTTPClient) AppendAudit(ctx context.Context, req api.AuditAppendRequest) (domain.AuditLogEntry, error) {
	var out domain.AuditLogEntry
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/audit", req, &out)
	return out, err
}

func (c *HTTPClient) RefreshMonitoring(ctx context.Context) (domain.MonitoringSnapshot, error) {
	var out domain.MonitoringSnapshot
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/monitoring/refresh", nil, &out)
	return out, err
}

func (c *HTTPClient) TriggerBackup(ctx context.Context, mode domain.BackupMode) (api.BackupResponse, error) {
	var out api.BackupResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/infrastructure/backup", api.BackupRequest{Mode: mode}, &out)
	return out, err
}

func (c *HTTPClient) TriggerRestore(ctx context.Context, req api.RestoreRequest) (api.RestoreResponse, error) {
	var out api.RestoreResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/infrastructure/restore", req, &out)
	return out, err
}

func (c *HTTPClient) ScheduleDeletion(ctx context.Context, req api.DeletionScheduleRequest) (domain.InfrastructureStatus, error) {
	var out api.InfrastructureStatusResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/infrastructure/deletion/schedule", req, &out)
	return out.Status, err
}

func (c *HTTPClient) CancelDeletion(ctx context.Context) (domain.InfrastructureStatus, error) {
	var out api.InfrastructureStatusResponse
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/infrastructure/deletion/cancel", nil, &out)
	return out.Status, err
}

func (c *HTTPClient) OverrideLicense(ctx context.Context, tier *domain.Tier) (domain.LicenseState, error) {
	var out domain.LicenseState
	err := c.call(ctx, http.MethodPost, apiPrefix+"/admin/license/override", api.LicenseOverrideRequest{Tier: tier}, &out)
	return out, err
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, false)
}

// call performs an authenticated request. On an expired access token it
// refreshes the credential pair once and retries once; a second expiry is
// returned to the caller as-is.
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	stale, _ := c.tokens.AccessToken()

	err := c.do(ctx, method, path, in, out, true)
	if !errors.Is(err, common.ErrTokenExpired) {
		return err
	}

	if rerr := c.refreshTokens(ctx, stale); rerr != nil {
		return rerr
	}

	return c.do(ctx, method, path, in, out, true)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.TenantHeaderName, c.tenantID)

	if authenticated {
		tok, ok := c.tokens.AccessToken()
		if !ok {
			// No in-memory credential yet (fresh start). Report expiry so
			// call() goes through the refresh path.
			return common.ErrTokenExpired
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// refreshTokens exchanges the stored refresh token for a new credential pair.
// Only one exchange is in flight at a time; latecomers wait for its outcome.
// stale is the access token the caller failed with: if it was already
// replaced by a completed refresh, there is nothing to do.
func (c *HTTPClient) refreshTokens(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	if p := c.refresh; p != nil {
		c.refreshMu.Unlock()
		select {
		case <-p.done:
			return p.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if cur, ok := c.tokens.AccessToken(); ok && cur != stale {
		c.refreshMu.Unlock()
		return nil
	}
	p := &pendingRefresh{done: make(chan struct{})}
	c.refresh = p
	c.refreshMu.Unlock()

	p.err = c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.refresh = nil
	c.refreshMu.Unlock()
	close(p.done)

	return p.err
}

func (c *HTTPClient) doRefresh(ctx context.Context) error {
	refresh, ok, err := c.tokens.StoredRefreshToken(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorUnauthorized
	}

	var out api.RefreshResponse
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/refresh", api.RefreshRequest{RefreshToken: refresh}, &out, false); err != nil {
		c.log.Warn(ctx, "token refresh failed", "error", err)
		return err
	}

	return c.tokens.SetTokens(ctx, out.AccessToken, out.RefreshToken)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(b) > 0 {
		var body api.ErrorResponse
		if jerr := json.Unmarshal(b, &body); jerr == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
		} else {
			apiErr.Message = string(b)
		}
	}
	return apiErr
}
