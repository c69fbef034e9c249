package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, api.ErrorResponse{Error: "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp, err := s.svc.Sessions.Login(r.Context(), tenantFrom(r), req.Username, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTwoFactorVerify(w http.ResponseWriter, r *http.Request) {
	var req api.TwoFactorVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp, err := s.svc.Sessions.VerifyTwoFactor(r.Context(), tenantFrom(r), req.ChallengeID, req.Code)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	pair, err := s.svc.Sessions.Refresh(r.Context(), tenantFrom(r), req.RefreshToken)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req api.LogoutRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.svc.Sessions.Logout(r.Context(), claimsFrom(r.Context()).UserID, req.RefreshToken); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Sessions.Resolve(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStepUp verifies against the true actor identity: a step-up performed
// while impersonating still belongs to the signed-in principal.
func (s *Server) handleStepUp(w http.ResponseWriter, r *http.Request) {
	var req api.StepUpRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp, err := s.svc.StepUp.Verify(r.Context(), claimsFrom(r.Context()).UserID, req.Action, req.Code)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImpersonate(w http.ResponseWriter, r *http.Request) {
	var req api.ImpersonateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	token, err := s.svc.Impersonation.Start(r.Context(), claimsFrom(r.Context()), req.TargetUserID, req.Reason)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ImpersonateResponse{AccessToken: token})
}

func (s *Server) handleImpersonateStop(w http.ResponseWriter, r *http.Request) {
	token, err := s.svc.Impersonation.Stop(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ImpersonateResponse{AccessToken: token})
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Admin.Bootstrap(r.Context(), claimsFrom(r.Context()).TenantID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePatchFeatureFlag(w http.ResponseWriter, r *http.Request) {
	var req api.FeatureFlagPatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	flag, err := s.svc.Admin.UpdateFeatureFlag(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "key"), req.Value, req.Reason)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, flag)
}

func (s *Server) handlePatchConfigItem(w http.ResponseWriter, r *http.Request) {
	var req api.ConfigItemPatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	item, err := s.svc.Admin.UpdateConfigItem(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "key"), req.Value, req.Note)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleAuditAppend(w http.ResponseWriter, r *http.Request) {
	var req api.AuditAppendRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	entry, err := s.svc.Audit.Append(r.Context(), claimsFrom(r.Context()), &req)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleMonitoringRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Monitoring.Refresh(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	var req api.BackupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp, err := s.svc.Backups.TriggerBackup(r.Context(), claimsFrom(r.Context()), req.Mode)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req api.RestoreRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp, err := s.svc.Backups.TriggerRestore(r.Context(), claimsFrom(r.Context()), &req)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleDeletionSchedule(w http.ResponseWriter, r *http.Request) {
	var req api.DeletionScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	requestedAt := req.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now().UTC()
	}

	status, err := s.svc.Admin.ScheduleDeletion(r.Context(), claimsFrom(r.Context()), req.ConfirmationText, requestedAt)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.InfrastructureStatusResponse{Status: *status})
}

func (s *Server) handleDeletionCancel(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Admin.CancelDeletion(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.InfrastructureStatusResponse{Status: *status})
}

func (s *Server) handleLicenseOverride(w http.ResponseWriter, r *http.Request) {
	var req api.LicenseOverrideRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	state, err := s.svc.Admin.OverrideLicense(r.Context(), claimsFrom(r.Context()), req.Tier)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
