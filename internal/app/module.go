package app

import (
	"log/slog"
	"os"

	"github.com/danuartha/authgate/internal/auth"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(auth.Dependency{
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			Bcrypt:     a.bcrypt,
			Argon2ID:   a.argon2id,
			Clock:      a.clock,
			Totp:       a.totp,
			EmailOTP:   a.emailOTP,
			BackupCode: a.backupCode,
			Validator:  a.validator,
			JWT:        a.jwt,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}
}
