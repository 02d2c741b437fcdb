package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/betterimg/betterimg/internal/client/avatar"
	"github.com/betterimg/betterimg/internal/client/config"
	"github.com/betterimg/betterimg/internal/client/ledger"
	"github.com/betterimg/betterimg/internal/client/models"
	"github.com/betterimg/betterimg/internal/client/payment"
	"github.com/betterimg/betterimg/internal/client/repositories/metadata"
	"github.com/betterimg/betterimg/internal/client/session"
	"github.com/betterimg/betterimg/internal/client/store"
	"github.com/betterimg/betterimg/internal/client/store/local"
	"github.com/betterimg/betterimg/internal/client/store/remote"
	"github.com/betterimg/betterimg/internal/client/view"
	"github.com/betterimg/betterimg/internal/logging"

	_ "modernc.org/sqlite"
)

// sessionService is the slice of the session manager the command handlers use.
type sessionService interface {
	Login(ctx context.Context, email string, password []byte) error
	Register(ctx context.Context, email string, password, confirm []byte) error
	Logout(ctx context.Context)
	Restore(ctx context.Context) error
	Current() *models.Identity
	Active() bool
}

// creditService reports the projected credit balance.
type creditService interface {
	Balance() int
}

// paymentService is the slice of the payment trigger the command handlers use.
type paymentService interface {
	Shown() bool
	Show(ctx context.Context) (approveURL string, err error)
	Confirm(ctx context.Context) (balance int, err error)
	Cancel()
}

type App struct {
	config   *config.Config
	session  sessionService
	credits  creditService
	payments paymentService
	views    *view.Controller
	log      logging.Logger
	reader   *bufio.Reader

	db           *sql.DB
	closeSession func() error
	unsubscribe  func()
}

// NewApp wires the full client: sqlite (accounts in local mode, the session
// marker in both modes), the selected account store, avatar generation, the
// session manager, the credit ledger, the payment trigger and the screen
// controller. The screen controller follows session transitions through a
// subscription, so command handlers never move it to the dashboard themselves.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {

	ctx := context.Background()

	db, err := store.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	marker := metadata.NewSQLiteRepository(db)

	var st store.Store
	switch c.StoreMode {
	case "remote":
		st = remote.New(c.RemoteEndpointAddr)
	default:
		st = local.New(db, []byte(c.SecretKey), c.SessionTokenValidity)
	}

	gen := avatar.NewHTTPGenerator(c.ImageGenEndpointAddr, c.ImageGenAPIKey)

	sess := session.NewManager(st, marker, gen, log, c.AvatarTimeout)
	sess.Start()

	led := ledger.New(st, sess, log)

	widget := payment.NewRESTWidget(c.PaymentEndpointAddr, c.PaymentClientID, c.PaymentSecret)
	trigger := payment.NewTrigger(widget, led, log)

	views := view.NewController()
	unsubscribe := sess.Subscribe(func(identity *models.Identity) {
		views.Apply(identity != nil)
	})

	return &App{
		config:       c,
		session:      sess,
		credits:      led,
		payments:     trigger,
		views:        views,
		log:          log,
		reader:       bufio.NewReader(os.Stdin),
		db:           db,
		closeSession: sess.Close,
		unsubscribe:  unsubscribe,
	}, nil
}

// Run restores a persisted session (if any) and blocks in the REPL until the
// user exits.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}

	printlnFn("betterimg CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.closeSession != nil {
		if err := a.closeSession(); err != nil {
			a.log.Warn(context.Background(), "error closing store", "error", err)
		}
	}
	if a.db != nil {
		// closing twice is fine: local mode already closed it through the store
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Active()
}

// getStatus renders the prompt segment: identity and balance on the
// dashboard, the presented form otherwise.
func (a *App) getStatus() string {
	if identity := a.session.Current(); identity != nil {
		return fmt.Sprintf("(%s %dcr)", identity.Email, identity.Credits)
	}
	return fmt.Sprintf("(%s)", a.views.State())
}
