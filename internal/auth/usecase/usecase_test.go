package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	libOTP "github.com/pquerna/otp"
	"golang.org/x/crypto/bcrypt"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/auth/outbound/store"
	"github.com/danuartha/authgate/internal/pkg/config"
	"github.com/danuartha/authgate/internal/pkg/goerror"
	"github.com/danuartha/authgate/internal/pkg/hash"
	"github.com/danuartha/authgate/internal/pkg/instrument"
	"github.com/danuartha/authgate/internal/pkg/jwt"
	"github.com/danuartha/authgate/internal/pkg/otp"
	"github.com/danuartha/authgate/internal/pkg/uid"
	"github.com/danuartha/authgate/internal/pkg/validator"
)

const testConfigYAML = `
modules:
  auth:
    login_otp_ttl_seconds: 60
    verify_otp_ttl_seconds: 30
    resend_otp_ttl_seconds: 60
    enable_otp_ttl_minutes: 10
`

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sentMail struct {
	To   string
	Code string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeNotifier) SendOTP(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Code: code})
	return nil
}

func (f *fakeNotifier) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("expected at least one mail to have been sent")
	}
	return f.sent[len(f.sent)-1].Code
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// hookedStore runs a callback right before each two-factor mutation, so a
// test can interleave a competing write between a usecase's precondition
// read and its mutate call.
type hookedStore struct {
	*store.Memory
	beforeMutate func()
}

func (h *hookedStore) MutateTwoFactor(ctx context.Context, userID int64, fn func(rec *entity.TwoFactorRecord) error) error {
	if h.beforeMutate != nil {
		h.beforeMutate()
	}
	return h.Memory.MutateTwoFactor(ctx, userID, fn)
}

type stubUID struct {
	mu sync.Mutex
	n  int64
}

func (s *stubUID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type testEnv struct {
	uc       *Usecase
	store    *store.Memory
	notifier *fakeNotifier
	clock    *stubClock
	jwt      jwt.JWT
	totp     otp.TOTPProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	valid, err := validator.NewV10()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	token, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "authgate-test",
		Audiences:  []string{"authgate-test"},
		SessionTTL: 24 * time.Hour,
		PendingTTL: 10 * time.Minute,
		Clock:      clk,
		UUID:       uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("failed to build jwt: %v", err)
	}

	mem := store.NewMemory()
	notif := &fakeNotifier{}
	totp := otp.NewTOTP("AuthGate", 30, 1, libOTP.DigitsSix)

	uc := New(Dependency{
		Store:      mem,
		Notifier:   notif,
		Validator:  valid,
		Config:     cfg,
		Bcrypt:     hash.NewBcrypt(bcrypt.MinCost, ""),
		Argon2ID:   hash.NewArgon2id(""),
		UID:        &stubUID{},
		Totp:       totp,
		EmailOTP:   otp.NewSixDigit(),
		BackupCode: otp.NewBackupCode(),
		Clock:      clk,
		JWT:        token,
		Instrument: instrument.NewNoop(),
	})

	return &testEnv{uc: uc, store: mem, notifier: notif, clock: clk, jwt: token, totp: totp}
}

func (e *testEnv) register(t *testing.T, email, password string) *RegisterOutput {
	t.Helper()

	out, err := e.uc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
		FullName: "Test User",
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", email, err)
	}
	return out
}

func (e *testEnv) authCtx(user entity.User) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: user.ID, UserEmail: user.Email})
}

// enableTOTP walks a user through full TOTP enrollment and returns the
// one-time enrollment material.
func (e *testEnv) enableTOTP(t *testing.T, user entity.User) *EnableOutput {
	t.Helper()

	ctx := e.authCtx(user)
	out, err := e.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodTOTP})
	if err != nil {
		t.Fatalf("failed to start totp enrollment: %v", err)
	}

	code, err := e.totp.GenerateCode(out.Secret, e.clock.Now())
	if err != nil {
		t.Fatalf("failed to generate totp code: %v", err)
	}
	if err := e.uc.VerifyAndEnable(ctx, VerifyEnableInput{Code: code}); err != nil {
		t.Fatalf("failed to confirm totp enrollment: %v", err)
	}

	return out
}

func (e *testEnv) enableEmail(t *testing.T, user entity.User) {
	t.Helper()

	ctx := e.authCtx(user)
	if _, err := e.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodEmail}); err != nil {
		t.Fatalf("failed to start email enrollment: %v", err)
	}
	if err := e.uc.VerifyAndEnable(ctx, VerifyEnableInput{Code: e.notifier.lastCode(t)}); err != nil {
		t.Fatalf("failed to confirm email enrollment: %v", err)
	}
}

func wantBusiness(t *testing.T, err error, msg string, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected business error %q, got %v", msg, err)
	}
	if gerr.Msg() != msg {
		t.Fatalf("expected message %q, got %q", msg, gerr.Msg())
	}
	if gerr.Code() != code {
		t.Fatalf("expected code %v, got %v", code, gerr.Code())
	}
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		out := env.register(t, "  Alice@Example.COM ", "s3cret-password")

		// Assert
		if out.AccessToken == "" {
			t.Fatalf("expected access token")
		}
		if out.User.Email != "alice@example.com" {
			t.Fatalf("expected normalized email, got %q", out.User.Email)
		}
		if out.User.Password == "s3cret-password" {
			t.Fatalf("password must be stored hashed")
		}

		claims, err := env.jwt.Verify(out.AccessToken)
		if err != nil || claims.RequiresOTP {
			t.Fatalf("expected full session token, claims=%+v err=%v", claims, err)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.register(t, "alice@example.com", "s3cret-password")

		// Act
		_, err := env.uc.Register(context.Background(), RegisterInput{
			Email:    "ALICE@example.com",
			Password: "another-password",
			FullName: "Imposter",
		})

		// Assert
		wantBusiness(t, err, "email already registered", goerror.CodeConflict)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.Register(context.Background(), RegisterInput{
			Email:    "not-an-email",
			Password: "short",
			FullName: "",
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
			t.Fatalf("expected invalid input error, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("WrongPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.register(t, "alice@example.com", "s3cret-password")

		// Act
		_, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong-password"})

		// Assert
		wantBusiness(t, err, "invalid email or password", goerror.CodeUnauthorized)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever-pass"})

		// Assert
		wantBusiness(t, err, "invalid email or password", goerror.CodeUnauthorized)
	})

	t.Run("WithoutTwoFactor", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.register(t, "alice@example.com", "s3cret-password")

		// Act
		out, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})

		// Assert
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		if out.MfaRequired || out.AccessToken == "" || out.User == nil {
			t.Fatalf("expected direct session, got %+v", out)
		}
	})

	t.Run("WithTOTPEnabled", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)
		mails := env.notifier.count()

		// Act
		out, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})

		// Assert
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		if !out.MfaRequired || out.PendingToken == "" || out.Method != entity.TwoFactorMethodTOTP {
			t.Fatalf("expected totp challenge, got %+v", out)
		}
		if out.AccessToken != "" {
			t.Fatalf("challenge response must not carry a session token")
		}
		if env.notifier.count() != mails {
			t.Fatalf("totp login must not send mail")
		}

		claims, err := env.jwt.Verify(out.PendingToken)
		if err != nil || !claims.RequiresOTP {
			t.Fatalf("expected pending token, claims=%+v err=%v", claims, err)
		}
	})

	t.Run("WithEmailEnabledSendsCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)
		mails := env.notifier.count()

		// Act
		out, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})

		// Assert
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		if !out.MfaRequired || out.Method != entity.TwoFactorMethodEmail {
			t.Fatalf("expected email challenge, got %+v", out)
		}
		if env.notifier.count() != mails+1 {
			t.Fatalf("expected login to dispatch a code")
		}

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.PendingOTP != env.notifier.lastCode(t) {
			t.Fatalf("stored code must match the mailed code")
		}
		if want := env.clock.Now().Add(time.Minute); !rec.PendingOTPExpiry.Equal(want) {
			t.Fatalf("expected login code expiry %v, got %v", want, rec.PendingOTPExpiry)
		}
	})
}

func TestVerifyLogin(t *testing.T) {
	t.Run("WithTOTPCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		enroll := env.enableTOTP(t, reg.User)
		login, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}

		code, err := env.totp.GenerateCode(enroll.Secret, env.clock.Now())
		if err != nil {
			t.Fatalf("failed to generate totp code: %v", err)
		}

		// Act
		out, err := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login.PendingToken, Code: code})

		// Assert
		if err != nil {
			t.Fatalf("failed to verify login: %v", err)
		}
		claims, err := env.jwt.Verify(out.AccessToken)
		if err != nil || claims.RequiresOTP {
			t.Fatalf("expected full session token, claims=%+v err=%v", claims, err)
		}
	})

	t.Run("WithBackupCodeConsumedOnce", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		enroll := env.enableTOTP(t, reg.User)
		backup := enroll.BackupCodes[0]

		login := func() string {
			out, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
			if err != nil {
				t.Fatalf("failed to login: %v", err)
			}
			return out.PendingToken
		}

		// Act
		_, firstErr := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login(), Code: backup})
		_, secondErr := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login(), Code: backup})

		// Assert
		if firstErr != nil {
			t.Fatalf("expected first backup code use to succeed: %v", firstErr)
		}
		wantBusiness(t, secondErr, "invalid code", goerror.CodeUnauthorized)

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if len(rec.BackupCodes) != len(enroll.BackupCodes)-1 {
			t.Fatalf("expected one backup code consumed, %d left", len(rec.BackupCodes))
		}
	})

	t.Run("WithEmailCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)
		login, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		code := env.notifier.lastCode(t)

		// Act
		out, err := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login.PendingToken, Code: code})

		// Assert
		if err != nil {
			t.Fatalf("failed to verify login: %v", err)
		}
		if out.AccessToken == "" {
			t.Fatalf("expected session token")
		}

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.PendingOTP != "" {
			t.Fatalf("expected used code to be cleared")
		}
	})

	t.Run("WithExpiredEmailCodeResends", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)
		login, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		stale := env.notifier.lastCode(t)
		env.clock.Advance(2 * time.Minute)

		// Act: stale code triggers an automatic resend, then the fresh one works
		_, retryErr := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login.PendingToken, Code: stale})
		fresh := env.notifier.lastCode(t)
		out, err := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login.PendingToken, Code: fresh})

		// Assert
		wantBusiness(t, retryErr, "a new code has been sent to your email", goerror.CodeRetry)
		if fresh == stale {
			t.Fatalf("expected a fresh code to be issued")
		}
		if err != nil {
			t.Fatalf("failed to verify with fresh code: %v", err)
		}
		if out.AccessToken == "" {
			t.Fatalf("expected session token")
		}
	})

	t.Run("WithWrongEmailCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)
		login, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}

		wrong := "000000"
		if wrong == env.notifier.lastCode(t) {
			wrong = "000001"
		}

		// Act
		_, err = env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login.PendingToken, Code: wrong})

		// Assert
		wantBusiness(t, err, "invalid code", goerror.CodeUnauthorized)
	})

	t.Run("WithSessionTokenRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)

		// Act: a full session token is not a pending token
		_, err := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: reg.AccessToken, Code: "123456"})

		// Assert
		wantBusiness(t, err, "invalid or expired token", goerror.CodeUnauthorized)
	})

	t.Run("WithGarbageToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: "garbage", Code: "123456"})

		// Assert
		wantBusiness(t, err, "invalid or expired token", goerror.CodeUnauthorized)
	})

	t.Run("WithoutEnabledTwoFactor", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)
		login, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}

		// record removed between challenge and verification
		if err := env.store.DeleteTwoFactor(context.Background(), reg.User.ID); err != nil {
			t.Fatalf("failed to delete record: %v", err)
		}

		// Act
		_, err = env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: login.PendingToken, Code: "123456"})

		// Assert
		wantBusiness(t, err, "two-factor authentication is not enabled", goerror.CodeUnauthorized)
	})
}

func TestVerifyLoginBackupCodeRace(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	reg := env.register(t, "alice@example.com", "s3cret-password")
	enroll := env.enableTOTP(t, reg.User)
	backup := enroll.BackupCodes[0]

	const attempts = 2
	tokens := make([]string, attempts)
	for i := range tokens {
		out, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		tokens[i] = out.PendingToken
	}

	// Act: both goroutines race to spend the same backup code
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.uc.VerifyLogin(context.Background(), VerifyLoginInput{PendingToken: tokens[i], Code: backup})
		}()
	}
	wg.Wait()

	// Assert: exactly one wins
	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one success, got %d (errs=%v)", ok, errs)
	}
}

func TestEnable(t *testing.T) {
	t.Run("Unauthenticated", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.Enable(context.Background(), EnableInput{Method: entity.TwoFactorMethodTOTP})

		// Assert
		wantBusiness(t, err, "Authentication required", goerror.CodeUnauthorized)
	})

	t.Run("TOTPReturnsEnrollmentMaterial", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")

		// Act
		out, err := env.uc.Enable(env.authCtx(reg.User), EnableInput{Method: entity.TwoFactorMethodTOTP})

		// Assert
		if err != nil {
			t.Fatalf("failed to start enrollment: %v", err)
		}
		if out.Secret == "" || out.ProvisioningURI == "" {
			t.Fatalf("expected secret and provisioning uri, got %+v", out)
		}
		if len(out.BackupCodes) != 10 {
			t.Fatalf("expected 10 backup codes, got %d", len(out.BackupCodes))
		}

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.Enabled {
			t.Fatalf("enrollment must start disabled")
		}
		for i, h := range rec.BackupCodes {
			if h == out.BackupCodes[i] {
				t.Fatalf("backup codes must be stored hashed")
			}
		}
	})

	t.Run("EmailSendsConfirmationCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")

		// Act
		out, err := env.uc.Enable(env.authCtx(reg.User), EnableInput{Method: entity.TwoFactorMethodEmail})

		// Assert
		if err != nil {
			t.Fatalf("failed to start enrollment: %v", err)
		}
		if out.Secret != "" || len(out.BackupCodes) != 0 {
			t.Fatalf("email enrollment must not return totp material")
		}

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.Enabled || rec.PendingOTP != env.notifier.lastCode(t) {
			t.Fatalf("expected disabled record with mailed code, got %+v", rec)
		}
		if want := env.clock.Now().Add(10 * time.Minute); !rec.PendingOTPExpiry.Equal(want) {
			t.Fatalf("expected enrollment code expiry %v, got %v", want, rec.PendingOTPExpiry)
		}
	})

	t.Run("ReplacesPriorEnrollment", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		ctx := env.authCtx(reg.User)
		if _, err := env.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodTOTP}); err != nil {
			t.Fatalf("failed to start totp enrollment: %v", err)
		}

		// Act
		if _, err := env.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodEmail}); err != nil {
			t.Fatalf("failed to restart enrollment: %v", err)
		}

		// Assert
		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.Method != entity.TwoFactorMethodEmail || rec.TOTPSecret != "" {
			t.Fatalf("expected email record to replace totp enrollment, got %+v", rec)
		}
	})
}

func TestVerifyAndEnable(t *testing.T) {
	t.Run("EmailCorrectCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		ctx := env.authCtx(reg.User)
		if _, err := env.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodEmail}); err != nil {
			t.Fatalf("failed to start enrollment: %v", err)
		}

		// Act
		err := env.uc.VerifyAndEnable(ctx, VerifyEnableInput{Code: env.notifier.lastCode(t)})

		// Assert
		if err != nil {
			t.Fatalf("failed to confirm enrollment: %v", err)
		}
		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if !rec.Enabled || rec.PendingOTP != "" {
			t.Fatalf("expected enabled record with cleared code, got %+v", rec)
		}
	})

	t.Run("EmailExpiredCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		ctx := env.authCtx(reg.User)
		if _, err := env.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodEmail}); err != nil {
			t.Fatalf("failed to start enrollment: %v", err)
		}
		code := env.notifier.lastCode(t)
		env.clock.Advance(11 * time.Minute)

		// Act
		err := env.uc.VerifyAndEnable(ctx, VerifyEnableInput{Code: code})

		// Assert: staleness wins over mismatch
		wantBusiness(t, err, "verification code has expired", goerror.CodeUnauthorized)
	})

	t.Run("EmailWrongCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		ctx := env.authCtx(reg.User)
		if _, err := env.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodEmail}); err != nil {
			t.Fatalf("failed to start enrollment: %v", err)
		}

		wrong := "000000"
		if wrong == env.notifier.lastCode(t) {
			wrong = "000001"
		}

		// Act
		err := env.uc.VerifyAndEnable(ctx, VerifyEnableInput{Code: wrong})

		// Assert
		wantBusiness(t, err, "invalid code", goerror.CodeUnauthorized)

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.Enabled {
			t.Fatalf("wrong code must not enable the factor")
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")

		// Act
		err := env.uc.VerifyAndEnable(env.authCtx(reg.User), VerifyEnableInput{Code: "123456"})

		// Assert
		wantBusiness(t, err, "two-factor authentication is not configured", goerror.CodeNotFound)
	})

	t.Run("TOTPWrongCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		ctx := env.authCtx(reg.User)
		out, err := env.uc.Enable(ctx, EnableInput{Method: entity.TwoFactorMethodTOTP})
		if err != nil {
			t.Fatalf("failed to start enrollment: %v", err)
		}

		code, err := env.totp.GenerateCode(out.Secret, env.clock.Now())
		if err != nil {
			t.Fatalf("failed to generate totp code: %v", err)
		}
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		// Act
		err = env.uc.VerifyAndEnable(ctx, VerifyEnableInput{Code: wrong})

		// Assert
		wantBusiness(t, err, "invalid code", goerror.CodeUnauthorized)
	})
}

func TestDisable(t *testing.T) {
	t.Run("WrongPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)

		// Act
		err := env.uc.Disable(env.authCtx(reg.User), DisableInput{Password: "wrong-password"})

		// Assert
		wantBusiness(t, err, "invalid password", goerror.CodeUnauthorized)

		if _, err := env.store.GetTwoFactor(context.Background(), reg.User.ID); err != nil {
			t.Fatalf("record must survive a failed disable: %v", err)
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")

		// Act
		err := env.uc.Disable(env.authCtx(reg.User), DisableInput{Password: "s3cret-password"})

		// Assert
		wantBusiness(t, err, "two-factor authentication is not configured", goerror.CodeNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)

		// Act
		err := env.uc.Disable(env.authCtx(reg.User), DisableInput{Password: "s3cret-password"})

		// Assert
		if err != nil {
			t.Fatalf("failed to disable: %v", err)
		}
		if _, err := env.store.GetTwoFactor(context.Background(), reg.User.ID); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected record removed, got %v", err)
		}

		// subsequent logins skip the challenge
		out, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil || out.MfaRequired {
			t.Fatalf("expected direct session after disable, got %+v err=%v", out, err)
		}
	})
}

func TestGetStatus(t *testing.T) {
	t.Run("NoRecord", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")

		// Act
		out, err := env.uc.GetStatus(env.authCtx(reg.User))

		// Assert
		if err != nil {
			t.Fatalf("failed to get status: %v", err)
		}
		if out.Enabled || out.Method != nil || out.BackupCodesLeft != 0 {
			t.Fatalf("expected empty status, got %+v", out)
		}
	})

	t.Run("TOTPEnabled", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)

		// Act
		out, err := env.uc.GetStatus(env.authCtx(reg.User))

		// Assert
		if err != nil {
			t.Fatalf("failed to get status: %v", err)
		}
		if !out.Enabled || out.Method == nil || *out.Method != entity.TwoFactorMethodTOTP {
			t.Fatalf("expected enabled totp status, got %+v", out)
		}
		if out.BackupCodesLeft != 10 {
			t.Fatalf("expected 10 backup codes left, got %d", out.BackupCodesLeft)
		}
	})
}

func TestSendEmailOtp(t *testing.T) {
	t.Run("WithPendingToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)
		login, err := env.uc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		before := env.notifier.lastCode(t)

		// Act
		err = env.uc.SendEmailOtp(context.Background(), SendEmailOtpInput{PendingToken: login.PendingToken})

		// Assert
		if err != nil {
			t.Fatalf("failed to resend code: %v", err)
		}
		after := env.notifier.lastCode(t)
		if after == before {
			t.Fatalf("expected a fresh code to be mailed")
		}

		rec, err := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if rec.PendingOTP != after {
			t.Fatalf("resend must replace the stored code")
		}
	})

	t.Run("WithSessionToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)
		mails := env.notifier.count()

		// Act
		err := env.uc.SendEmailOtp(context.Background(), SendEmailOtpInput{SessionToken: reg.AccessToken})

		// Assert
		if err != nil {
			t.Fatalf("failed to resend code: %v", err)
		}
		if env.notifier.count() != mails+1 {
			t.Fatalf("expected one mail to be sent")
		}
	})

	t.Run("WithoutTokens", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.SendEmailOtp(context.Background(), SendEmailOtpInput{})

		// Assert
		wantBusiness(t, err, "Authentication required", goerror.CodeUnauthorized)
	})

	t.Run("WithTOTPMethod", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableTOTP(t, reg.User)

		// Act
		err := env.uc.SendEmailOtp(context.Background(), SendEmailOtpInput{SessionToken: reg.AccessToken})

		// Assert
		wantBusiness(t, err, "two-factor authentication is not configured", goerror.CodeNotFound)
	})

	t.Run("WithConcurrentReEnrollment", func(t *testing.T) {
		// Arrange: the user re-enrolls with totp between the resend's method
		// check and its write, so the write must be refused.
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")
		env.enableEmail(t, reg.User)

		hooked := &hookedStore{Memory: env.store}
		hooked.beforeMutate = func() {
			hooked.beforeMutate = nil
			env.enableTOTP(t, reg.User)
		}
		env.uc.store = hooked
		mails := env.notifier.count()

		// Act
		err := env.uc.SendEmailOtp(context.Background(), SendEmailOtpInput{SessionToken: reg.AccessToken})

		// Assert
		wantBusiness(t, err, "two-factor authentication is not configured", goerror.CodeNotFound)
		if env.notifier.count() != mails {
			t.Fatalf("no mail must be sent when the method changed")
		}
		rec, gerr := env.store.GetTwoFactor(context.Background(), reg.User.ID)
		if gerr != nil {
			t.Fatalf("failed to get record: %v", gerr)
		}
		if rec.Method != entity.TwoFactorMethodTOTP || rec.PendingOTP != "" {
			t.Fatalf("totp record must not carry an email code, got %+v", rec)
		}
	})
}

func TestProfile(t *testing.T) {
	t.Run("Authenticated", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		reg := env.register(t, "alice@example.com", "s3cret-password")

		// Act
		out, err := env.uc.Profile(env.authCtx(reg.User))

		// Assert
		if err != nil {
			t.Fatalf("failed to get profile: %v", err)
		}
		if out.ID != reg.User.ID || out.Email != "alice@example.com" || out.FullName != "Test User" {
			t.Fatalf("unexpected profile: %+v", out)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.Profile(context.Background())

		// Assert
		wantBusiness(t, err, "Authentication required", goerror.CodeUnauthorized)
	})
}
