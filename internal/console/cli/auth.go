package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/services"
)

func (a *App) login(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	password, err := GetSecret(a.out, "Enter password")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	res, err := a.console.Login(ctx, username, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "login failed: %v\n", err)
		return
	}

	if res.Step == services.LoginTwoFactorRequired {
		code, err := GetSimpleText(a.reader, "Enter the 6-digit verification code", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
			return
		}
		if err := a.console.CompleteTwoFactor(ctx, res.ChallengeID, code); err != nil {
			fmt.Fprintf(a.out, "verification failed: %v\n", err)
			return
		}
	}

	a.whoami()
}

func (a *App) whoami() {
	identity, ok := a.console.State().Identity()
	if !ok {
		fmt.Fprintln(a.out, "not logged in")
		return
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s tier=%s\n",
		identity.DisplayName, identity.Email, identity.Role, identity.Tier)
	if imp, ok := a.console.State().Impersonation(); ok {
		fmt.Fprintf(a.out, "impersonating %s <%s> tier=%s since %s (reason: %s)\n",
			imp.Target.DisplayName, imp.Target.Email, imp.Target.Tier,
			imp.StartedAt.Format("15:04:05"), imp.Reason)
	}
}
