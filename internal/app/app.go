package app

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/danuartha/authgate/internal/pkg/clock"
	"github.com/danuartha/authgate/internal/pkg/config"
	"github.com/danuartha/authgate/internal/pkg/hash"
	"github.com/danuartha/authgate/internal/pkg/instrument"
	"github.com/danuartha/authgate/internal/pkg/jwt"
	"github.com/danuartha/authgate/internal/pkg/mail"
	"github.com/danuartha/authgate/internal/pkg/otp"
	"github.com/danuartha/authgate/internal/pkg/router"
	"github.com/danuartha/authgate/internal/pkg/uid"
	"github.com/danuartha/authgate/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator  validator.Validator
	clock      clock.Clocker
	bcrypt     hash.Hash
	argon2id   hash.Hash
	uid        uid.NumberID
	uuid       uid.StringID
	totp       otp.TOTPProvider
	emailOTP   otp.NumericGenerator
	backupCode otp.BackupCodeGenerator
	jwt        jwt.JWT

	// resources
	cacheConn *redis.Client
	mail      mail.Mail

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initCache()
	app.initMail()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
