// Package state holds the admin console's in-memory projection of the
// authoritative store: identity, impersonation, step-up freshness, and the
// administrative aggregate (users, flags, license, config, monitoring,
// infrastructure, audit log cache).
//
// The aggregate is a read optimization, never the source of truth: every
// mutation goes through the store first and only then updates the local
// copy.
package state

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// Aggregate is one console session's worth of cached state. All accessors
// return copies; callers never hold references into the cache.
type Aggregate struct {
	mu sync.RWMutex

	identity      *domain.SessionInfo
	impersonation *domain.ImpersonationState
	stepUpAt      *time.Time

	users          []domain.SessionInfo
	flags          []domain.FeatureFlagRecord
	license        domain.LicenseState
	configItems    []domain.ConfigItem
	monitoring     domain.MonitoringSnapshot
	infrastructure domain.InfrastructureStatus
	auditLogs      []domain.AuditLogEntry
}

func New() *Aggregate {
	return &Aggregate{}
}

// Reset drops everything back to the unauthenticated defaults: no identity,
// no impersonation, unverified step-up, empty aggregate. Called on logout
// and whenever session resolution fails part-way (a stale aggregate with no
// identity is a privilege-confusion hazard).
func (a *Aggregate) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = nil
	a.impersonation = nil
	a.stepUpAt = nil
	a.users = nil
	a.flags = nil
	a.license = domain.LicenseState{}
	a.configItems = nil
	a.monitoring = domain.MonitoringSnapshot{}
	a.infrastructure = domain.InfrastructureStatus{}
	a.auditLogs = nil
}

// ApplyResolved installs a freshly resolved session and bootstrap snapshot
// in one step, so observers never see one without the other. Step-up
// freshness is dropped on every transition.
func (a *Aggregate) ApplyResolved(identity domain.SessionInfo, imp *domain.ImpersonationState, snap domain.BootstrapSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := identity
	a.identity = &id
	if imp != nil {
		cp := *imp
		a.impersonation = &cp
	} else {
		a.impersonation = nil
	}
	a.stepUpAt = nil
	a.users = append([]domain.SessionInfo(nil), snap.Users...)
	a.flags = append([]domain.FeatureFlagRecord(nil), snap.FeatureFlags...)
	a.license = snap.License
	a.configItems = append([]domain.ConfigItem(nil), snap.ConfigItems...)
	a.monitoring = snap.Monitoring
	a.infrastructure = snap.Infrastructure
	a.auditLogs = append([]domain.AuditLogEntry(nil), snap.AuditLogs...)
	sortAuditDescending(a.auditLogs)
}

// Identity returns the true actor, or ok=false when unauthenticated.
func (a *Aggregate) Identity() (domain.SessionInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.identity == nil {
		return domain.SessionInfo{}, false
	}
	return *a.identity, true
}

// Impersonation returns the active impersonation state, if any.
func (a *Aggregate) Impersonation() (domain.ImpersonationState, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.impersonation == nil {
		return domain.ImpersonationState{}, false
	}
	return *a.impersonation, true
}

// EffectiveSession is the identity whose tier applies to feature gating:
// the impersonation target when active, else the actor.
func (a *Aggregate) EffectiveSession() (domain.SessionInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.impersonation != nil {
		return a.impersonation.Target, true
	}
	if a.identity == nil {
		return domain.SessionInfo{}, false
	}
	return *a.identity, true
}

// StepUpVerifiedAt returns the last successful step-up time, if any.
func (a *Aggregate) StepUpVerifiedAt() (time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.stepUpAt == nil {
		return time.Time{}, false
	}
	return *a.stepUpAt, true
}

// MarkStepUpVerified records a successful step-up verification.
func (a *Aggregate) MarkStepUpVerified(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stepUpAt = &at
}

// ClearStepUp forgets the step-up verification.
func (a *Aggregate) ClearStepUp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stepUpAt = nil
}

// Users returns a copy of the directory listing.
func (a *Aggregate) Users() []domain.SessionInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.SessionInfo(nil), a.users...)
}

// FeatureFlags returns a copy of all flag records.
func (a *Aggregate) FeatureFlags() []domain.FeatureFlagRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.FeatureFlagRecord(nil), a.flags...)
}

// FeatureFlag looks up one flag by key.
func (a *Aggregate) FeatureFlag(key string) (domain.FeatureFlagRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, f := range a.flags {
		if f.Key == key {
			return f, true
		}
	}
	return domain.FeatureFlagRecord{}, false
}

// SetFeatureFlag replaces the cached record for flag.Key.
func (a *Aggregate) SetFeatureFlag(flag domain.FeatureFlagRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.flags {
		if a.flags[i].Key == flag.Key {
			a.flags[i] = flag
			return
		}
	}
	a.flags = append(a.flags, flag)
}

// ConfigItem looks up one config item by key.
func (a *Aggregate) ConfigItem(key string) (domain.ConfigItem, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, c := range a.configItems {
		if c.Key == key {
			return c, true
		}
	}
	return domain.ConfigItem{}, false
}

// SetConfigItem replaces the cached copy of item.Key.
func (a *Aggregate) SetConfigItem(item domain.ConfigItem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.configItems {
		if a.configItems[i].Key == item.Key {
			a.configItems[i] = item
			return
		}
	}
	a.configItems = append(a.configItems, item)
}

// ConfigItems returns a copy of all config items.
func (a *Aggregate) ConfigItems() []domain.ConfigItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.ConfigItem(nil), a.configItems...)
}

// License returns the cached license state.
func (a *Aggregate) License() domain.LicenseState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.license
}

// SetLicense replaces the cached license state.
func (a *Aggregate) SetLicense(l domain.LicenseState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.license = l
}

// Monitoring returns the cached monitoring snapshot.
func (a *Aggregate) Monitoring() domain.MonitoringSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.monitoring
}

// SetMonitoring replaces the cached monitoring snapshot.
func (a *Aggregate) SetMonitoring(m domain.MonitoringSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.monitoring = m
}

// Infrastructure returns the cached infrastructure status.
func (a *Aggregate) Infrastructure() domain.InfrastructureStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.infrastructure
}

// SetInfrastructure replaces the cached infrastructure status.
func (a *Aggregate) SetInfrastructure(s domain.InfrastructureStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.infrastructure = s
}

// AuditLogs returns a copy of the local audit cache, newest first.
func (a *Aggregate) AuditLogs() []domain.AuditLogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.AuditLogEntry(nil), a.auditLogs...)
}

// PrependAudit inserts an accepted entry at the head of the local cache,
// preserving submission order for equal timestamps. The store remains the
// arbiter of true ordering.
func (a *Aggregate) PrependAudit(entry domain.AuditLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auditLogs = append([]domain.AuditLogEntry{entry}, a.auditLogs...)
}

func sortAuditDescending(entries []domain.AuditLogEntry) {
	// Insertion sort: bootstrap snapshots arrive nearly sorted already.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Timestamp.After(entries[j-1].Timestamp); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}
