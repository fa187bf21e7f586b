package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

// Options configures the behaviour of the fake manager and bridges.
type Options struct {
	// Users maps manager user ids to their passwords.
	Users map[string]string

	// Bridges is served as the enabled bridges configuration, nil leaves all bridges enabled.
	Bridges map[bridgemanager.BridgeId]bool
	// InternalBridgeInfo is served as the internal bridge info flag.
	InternalBridgeInfo bool

	// AllowBotLogin is reported by the Telegram bridge.
	AllowBotLogin bool
	// TelegramCode is the login code accepted by the Telegram bridge.
	TelegramCode string
	// TelegramPasswords maps phone numbers with two-factor authentication to their password.
	TelegramPasswords map[string]string

	// QRCodes is the number of QR codes sent by the WhatsApp bridge before the login completes.
	QRCodes int
	// QRInterval is the delay between WhatsApp QR codes.
	QRInterval time.Duration
	// QRTimeout makes the WhatsApp login time out instead of succeeding.
	QRTimeout bool

	// AllowOrigin is the origin allowed by CORS, empty allows none.
	AllowOrigin string
}

func DefaultOptions() Options {
	return Options{
		Users:             map[string]string{"@admin:example.com": "admin"},
		AllowBotLogin:     true,
		TelegramCode:      "123456",
		TelegramPasswords: map[string]string{"+15557654321": "hunter2"},
		QRCodes:           2,
		QRInterval:        2 * time.Second,
	}
}

// Server is an in-memory double of the manager API and of the provisioning APIs of the bridges.
type Server struct {
	log  bridgemanager.Logger
	opts Options

	mu       sync.Mutex
	tokens   map[string]string
	accounts map[string]*account

	server *http.Server
}

type account struct {
	telegram        *telegramUser
	telegramPending *telegramPending
	twitter         *twitterUser
	facebook        *facebookUser
	whatsapp        *whatsappUser
	puppets         map[bridgemanager.BridgeId][]puppet
	nextPuppetId    int
}

// replyError is sent as {"error", "errcode"} with its status code.
type replyError struct {
	status  int
	errCode string
	message string
}

func (e *replyError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.status, e.errCode, e.message)
}

func newReplyError(status int, errCode, message string) error {
	return &replyError{status: status, errCode: errCode, message: message}
}

var (
	errUnauthorized = newReplyError(http.StatusUnauthorized, "M_UNKNOWN_TOKEN", "Invalid access token")
	errBadJson      = newReplyError(http.StatusBadRequest, "M_NOT_JSON", "Request body is not valid JSON")
	errNotLoggedIn  = newReplyError(http.StatusBadRequest, "not_logged_in", "You're not logged in")
)

func New(log bridgemanager.Logger, opts Options) *Server {
	if opts.Users == nil {
		opts.Users = map[string]string{}
	}
	if opts.TelegramPasswords == nil {
		opts.TelegramPasswords = map[string]string{}
	}

	return &Server{
		log:      log,
		opts:     opts,
		tokens:   map[string]string{},
		accounts: map[string]*account{},
	}
}

// Handler returns the HTTP handler serving the manager API under /api.
func (s *Server) Handler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, nil, newReplyError(http.StatusNotFound, "M_NOT_FOUND", "Unrecognized request"))
	})

	s.registerManager(m)
	s.registerTelegram(m)
	s.registerTwitter(m)
	s.registerFacebook(m)
	s.registerWhatsApp(m)
	s.registerPuppet(m, bridgemanager.BridgeSlack)
	s.registerPuppet(m, bridgemanager.BridgePuppetInstagram)

	c := cors.New(cors.Options{
		AllowedOrigins:      []string{s.opts.AllowOrigin},
		AllowedHeaders:      []string{"Authorization", "Content-Type"},
		AllowPrivateNetwork: true,
		AllowCredentials:    true,
	})

	return c.Handler(m)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed starting dev server listener: %w", err)
	}

	s.server = &http.Server{Handler: s.Handler()}
	s.log.Infof("dev server listening on %s", lis.Addr())

	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()

	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed serving dev server: %w", err)
	}

	return nil
}

// Login creates an access token for userId without checking passwords.
func (s *Server) Login(userId string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = userId
	return token
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		var replyErr *replyError
		if !errors.As(err, &replyErr) {
			s.log.WithError(err).Errorf("failed handling request %s %s", r.Method, r.URL.Path)
			replyErr = &replyError{status: http.StatusInternalServerError, errCode: "M_UNKNOWN", message: "Internal server error"}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(replyErr.status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": replyErr.message, "errcode": replyErr.errCode})
		return
	}

	if data == nil {
		data = struct{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) authenticate(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}

	return s.userForToken(token)
}

func (s *Server) userForToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userId, ok := s.tokens[token]
	return userId, ok
}

// accountHandler is called with the lock held and the account of the authenticated user.
type accountHandler func(r *http.Request, userId string, acc *account) (any, error)

func (s *Server) withAccount(handler accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId, ok := s.authenticate(r)
		if !ok {
			s.reply(w, r, nil, errUnauthorized)
			return
		}

		s.mu.Lock()
		data, err := handler(r, userId, s.accountLocked(userId))
		s.mu.Unlock()

		s.reply(w, r, data, err)
	}
}

func (s *Server) accountLocked(userId string) *account {
	acc, ok := s.accounts[userId]
	if !ok {
		acc = &account{puppets: map[bridgemanager.BridgeId][]puppet{}}
		s.accounts[userId] = acc
	}

	return acc
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJson
	}

	return nil
}

func route(id bridgemanager.BridgeId, method, path string) string {
	return method + " /api" + id.Prefix() + path
}
