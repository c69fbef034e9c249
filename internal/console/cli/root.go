package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	identity, ok := a.console.State().Identity()
	if !ok {
		return ""
	}
	s := identity.Username
	if imp, ok := a.console.State().Impersonation(); ok {
		s += " as " + imp.Target.Username
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "OwnCent admin console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "oc %s> ", a.getStatus())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.printHelp()
		case "login":
			a.login(ctx)
		case "logout":
			a.console.Logout(ctx)
		case "whoami":
			a.whoami()
		case "users":
			a.listUsers()
		case "flags":
			a.listFlags()
		case "flag":
			a.setFlag(ctx, args)
		case "config":
			a.listConfig()
		case "setconfig":
			a.setConfig(ctx, args)
		case "stepup":
			a.stepUp(ctx, args)
		case "impersonate":
			a.impersonate(ctx, args)
		case "revert":
			a.revert(ctx)
		case "audit":
			a.listAudit(args)
		case "monitoring":
			a.monitoring(ctx)
		case "license":
			a.license(ctx, args)
		case "backup":
			a.backup(ctx, args)
		case "restore":
			a.restore(ctx, args)
		case "delete-tenant":
			a.scheduleDeletion(ctx)
		case "cancel-deletion":
			a.cancelDeletion(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) printHelp() {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Available commands: login, exit")
		return
	}
	fmt.Fprintln(a.out, "Available commands:")
	fmt.Fprintln(a.out, "  whoami, users, audit [n], monitoring")
	fmt.Fprintln(a.out, "  flags, flag <key> on|off [reason...]")
	fmt.Fprintln(a.out, "  config, setconfig <key>")
	fmt.Fprintln(a.out, "  stepup <impersonation|config_edit|license_override|restore|full_deletion>")
	fmt.Fprintln(a.out, "  impersonate <user-id>, revert")
	fmt.Fprintln(a.out, "  license <tier|clear>")
	fmt.Fprintln(a.out, "  backup [full|config_only], restore <backup-id> [dry-run]")
	fmt.Fprintln(a.out, "  delete-tenant, cancel-deletion")
	fmt.Fprintln(a.out, "  logout, exit")
}
