package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

func (a *App) listUsers() {
	for _, u := range a.console.State().Users() {
		fmt.Fprintf(a.out, "%-10s %-25s role=%-9s tier=%s\n", u.ID, u.Username, u.Role, u.Tier)
	}
}

func (a *App) listFlags() {
	for _, f := range a.console.State().FeatureFlags() {
		available := a.console.FeatureAvailable(f.Key)
		fmt.Fprintf(a.out, "%-28s value=%-5t tier>=%-8s visible=%t\n",
			f.Key, f.Value, f.RequiredTier, available)
	}
}

func (a *App) setFlag(ctx context.Context, args []string) {
	if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
		fmt.Fprintln(a.out, "Usage: flag <key> on|off [reason...]")
		return
	}
	reason := strings.Join(args[2:], " ")
	if err := a.console.UpdateFeatureFlag(ctx, args[0], args[1] == "on", reason); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "flag %s set to %s\n", args[0], args[1])
}

func (a *App) listConfig() {
	for _, item := range a.console.State().ConfigItems() {
		r := item.Redacted()
		fmt.Fprintf(a.out, "%-24s = %-30s", r.Key, r.Value)
		if item.RequiresStepUp {
			fmt.Fprint(a.out, " [step-up]")
		}
		fmt.Fprintln(a.out)
	}
}

func (a *App) setConfig(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: setconfig <key>")
		return
	}
	key := args[0]

	item, ok := a.console.State().ConfigItem(key)
	if !ok {
		fmt.Fprintf(a.out, "unknown config item %q\n", key)
		return
	}

	var value string
	if item.Masked {
		secret, err := GetSecret(a.out, "Enter new value (input hidden)")
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
			return
		}
		value = string(secret)
		common.WipeByteArray(secret)
	} else {
		v, err := GetSimpleText(a.reader, "Enter new value", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
			return
		}
		value = v
	}

	note, err := GetSimpleText(a.reader, "Enter change note (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.console.UpdateConfigItem(ctx, key, value, note); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "config item %s updated\n", key)
}

func (a *App) stepUp(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: stepup <action>")
		return
	}
	code, err := GetSimpleText(a.reader, "Enter the step-up verification code", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	res, err := a.console.VerifyStepUp(ctx, common.StepUpAction(args[0]), code)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, res.Message)
}

func (a *App) impersonate(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: impersonate <user-id>")
		return
	}
	reason, err := GetSimpleText(a.reader, "Enter a reason for the impersonation", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.console.StartImpersonation(ctx, args[0], reason); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.whoami()
}

func (a *App) revert(ctx context.Context) {
	if err := a.console.StopImpersonation(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.whoami()
}

func (a *App) listAudit(args []string) {
	n := 20
	if len(args) == 1 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	logs := a.console.State().AuditLogs()
	if len(logs) > n {
		logs = logs[:n]
	}
	for _, e := range logs {
		who := e.Actor.Username
		if e.Impersonated != nil {
			who += " (as " + e.Impersonated.Username + ")"
		}
		fmt.Fprintf(a.out, "%s [%-8s] %-30s %-20s by %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Severity, e.Action, e.TargetEntity, who)
	}
}

func (a *App) monitoring(ctx context.Context) {
	snap, err := a.console.RefreshMonitoring(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "db=%s smtp=%s uptime=%ds cpu=%.1f%% mem=%.1f%% backlog=%d\n",
		snap.DBConnection, snap.SMTPStatus, snap.UptimeSeconds,
		snap.CPUUtilization, snap.MemoryUtilization, snap.QueueBacklog)
}

func (a *App) license(ctx context.Context, args []string) {
	if len(args) == 0 {
		lic := a.console.State().License()
		fmt.Fprintf(a.out, "license %s tier=%s status=%s expires=%s\n",
			lic.LicenseID, lic.Tier, lic.Status, lic.ExpiresAt.Format("2006-01-02"))
		if lic.OverrideActive {
			fmt.Fprintf(a.out, "override active: tier=%s\n", lic.OverrideTier)
		}
		return
	}

	var err error
	if args[0] == "clear" {
		err = a.console.OverrideLicenseTier(ctx, nil)
	} else {
		tier := domain.Tier(args[0])
		err = a.console.OverrideLicenseTier(ctx, &tier)
	}
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "license override updated")
}

func (a *App) backup(ctx context.Context, args []string) {
	mode := domain.BackupFull
	if len(args) == 1 {
		mode = domain.BackupMode(args[0])
	}
	resp, err := a.console.TriggerBackup(ctx, mode)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "backup %s started at %s\n", resp.BackupID, resp.StartedAt.Format("15:04:05"))
}

func (a *App) restore(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: restore <backup-id> [dry-run]")
		return
	}
	dryRun := len(args) > 1 && args[1] == "dry-run"

	note, err := GetSimpleText(a.reader, "Enter a note for the restore (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.console.TriggerRestore(ctx, args[0], dryRun, note); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if dryRun {
		fmt.Fprintln(a.out, "dry run completed, no data was changed")
	} else {
		fmt.Fprintln(a.out, "restore completed")
	}
}

func (a *App) scheduleDeletion(ctx context.Context) {
	fmt.Fprintln(a.out, "This schedules the deletion of ALL tenant data.")
	confirmation, err := GetSimpleText(a.reader, "Type the tenant confirmation phrase to continue", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.console.ScheduleDeletion(ctx, confirmation); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if at := a.console.State().Infrastructure().DeletionScheduledFor; at != nil {
		fmt.Fprintf(a.out, "deletion scheduled for %s\n", at.Format("2006-01-02 15:04:05"))
	}
}

func (a *App) cancelDeletion(ctx context.Context) {
	if err := a.console.CancelDeletion(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "scheduled deletion cancelled")
}
