package services

import (
	"context"
	"database/sql"
	"net"
	"runtime"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/console/authz"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

const smtpProbeTimeout = 2 * time.Second

// MonitoringService rebuilds the health snapshot on demand: database ping,
// SMTP reachability, process uptime, runtime memory, and the audit backlog
// since the previous refresh.
type MonitoringService struct {
	db        *sql.DB
	rm        repomanager.RepositoryManager
	log       logging.Logger
	startedAt time.Time

	// dialTimeout is a seam for the SMTP probe in tests.
	dialTimeout func(network, address string, timeout time.Duration) (net.Conn, error)
}

func NewMonitoringService(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *MonitoringService {
	return &MonitoringService{
		db:          db,
		rm:          rm,
		log:         log,
		startedAt:   time.Now(),
		dialTimeout: net.DialTimeout,
	}
}

func (s *MonitoringService) probeDB(ctx context.Context) string {
	if err := s.db.PingContext(ctx); err != nil {
		return "down"
	}
	return "ok"
}

func (s *MonitoringService) probeSMTP(ctx context.Context, tenantID string) string {
	items := s.rm.ConfigItems(s.db)
	host, err := items.Get(ctx, tenantID, "smtp.host")
	if err != nil {
		return "unconfigured"
	}
	port, err := items.Get(ctx, tenantID, "smtp.port")
	if err != nil {
		return "unconfigured"
	}
	conn, err := s.dialTimeout("tcp", net.JoinHostPort(host.Value, port.Value), smtpProbeTimeout)
	if err != nil {
		return "unreachable"
	}
	_ = conn.Close()
	return "ok"
}

// Refresh probes dependencies, stores the new snapshot, and returns it.
func (s *MonitoringService) Refresh(ctx context.Context, claims *auth.Claims) (*domain.MonitoringSnapshot, error) {
	if d := authz.CanAccessAdmin(claims.Role); !d.Allowed {
		return nil, forbidden(d)
	}

	now := time.Now().UTC()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	memoryUtilization := 0.0
	if mem.Sys > 0 {
		memoryUtilization = float64(mem.HeapAlloc) / float64(mem.Sys) * 100
	}

	since := now.Add(-time.Hour)
	if prev, err := s.rm.TenantState(s.db).GetMonitoring(ctx, claims.TenantID); err == nil && !prev.LastUpdatedAt.IsZero() {
		since = prev.LastUpdatedAt
	}
	backlog, err := s.rm.AuditLog(s.db).CountSince(ctx, claims.TenantID, since)
	if err != nil {
		s.log.Warn(ctx, "audit backlog count failed", "error", err)
		backlog = 0
	}

	snap := &domain.MonitoringSnapshot{
		LastUpdatedAt: now,
		DBConnection:  s.probeDB(ctx),
		SMTPStatus:    s.probeSMTP(ctx, claims.TenantID),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		// GC time fraction stands in for CPU load; the demo deployment has
		// no per-process CPU accounting.
		CPUUtilization:    mem.GCCPUFraction * 100,
		MemoryUtilization: memoryUtilization,
		QueueBacklog:      backlog,
	}

	if err := s.rm.TenantState(s.db).SaveMonitoring(ctx, claims.TenantID, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
