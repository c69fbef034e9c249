package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

func TestAppendAuditLog_SuccessPrependsLocally(t *testing.T) {
	fc := &fakeClient{
		auditResp: domain.AuditLogEntry{
			ID:     "a-10",
			Actor:  domain.AuditIdentity{UserID: ownerIdentity.ID, Username: ownerIdentity.Username},
			Action: "impersonation.start",
			Impersonated: &domain.AuditIdentity{
				UserID: freeUserIdentity.ID, Username: freeUserIdentity.Username,
			},
			Severity:  domain.SeverityWarning,
			Immutable: true,
			Timestamp: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		},
	}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, &domain.ImpersonationState{Target: freeUserIdentity})

	f.console.AppendAuditLog(context.Background(), "impersonation.start", "u-free", nil, domain.SeverityWarning)

	logs := f.state.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "a-10", logs[0].ID)
	assert.Equal(t, ownerIdentity.ID, logs[0].Actor.UserID, "attribution is always the true actor")
	require.NotNil(t, logs[0].Impersonated)
	assert.Equal(t, freeUserIdentity.ID, logs[0].Impersonated.UserID)
	assert.True(t, fc.lastAudit.Immutable)
}

func TestAppendAuditLog_FailureIsSwallowed(t *testing.T) {
	fc := &fakeClient{auditErr: errors.New("store down")}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)

	f.console.AppendAuditLog(context.Background(), "config.update", "smtp.host", nil, domain.SeverityWarning)

	assert.Empty(t, f.state.AuditLogs(), "a failed append leaves no local ghost entry")
	assert.Equal(t, 1, fc.callCount("AppendAudit"))
}

func TestAppendAuditLog_Unauthenticated_NoCall(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)

	f.console.AppendAuditLog(context.Background(), "config.update", "smtp.host", nil, "")

	assert.Zero(t, fc.callCount("AppendAudit"))
}

func TestAppendAuditLog_DefaultSeverity(t *testing.T) {
	fc := &fakeClient{auditResp: domain.AuditLogEntry{ID: "a-11"}}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)

	f.console.AppendAuditLog(context.Background(), "monitoring.refresh", "tenant", nil, "")

	assert.Equal(t, domain.SeverityInfo, fc.lastAudit.Severity)
}
