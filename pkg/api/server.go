package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/ioaccount/pkg/account"
	"github.com/uhyunpark/ioaccount/pkg/address"
	"github.com/uhyunpark/ioaccount/pkg/crypto"
)

// Server exposes the account registry and the stateless key/address operations over REST
type Server struct {
	accounts *account.Accounts
	router   *mux.Router
	logger   *zap.SugaredLogger
	origins  []string

	mu   sync.Mutex
	http *http.Server
}

// NewServer creates a new API server
func NewServer(accounts *account.Accounts, logger *zap.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		accounts: accounts,
		router:   mux.NewRouter(),
		logger:   logger.Sugar(),
		origins:  allowedOrigins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Account registry endpoints
	api.HandleFunc("/accounts", s.handleListAccounts).Methods("GET")
	api.HandleFunc("/accounts", s.handleCreateAccount).Methods("POST")
	api.HandleFunc("/accounts/{address}", s.handleGetAccount).Methods("GET")
	api.HandleFunc("/accounts/{address}", s.handleRemoveAccount).Methods("DELETE")
	api.HandleFunc("/accounts/{address}/sign", s.handleSign).Methods("POST")

	// Stateless endpoints
	api.HandleFunc("/verify", s.handleVerify).Methods("POST")
	api.HandleFunc("/recover", s.handleRecover).Methods("POST")
	api.HandleFunc("/addresses/{address}", s.handleDecodeAddress).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped with CORS
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.router)
}

// Start serves until Shutdown is called; it returns http.ErrServerClosed after a clean stop
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Infow("api_server_starting", "addr", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := s.accounts.List()
	response := make([]AccountInfo, len(accounts))
	for i, acc := range accounts {
		response[i] = accountInfo(acc)
	}
	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	// an empty body means "generate"
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var (
		acc *account.Account
		err error
	)
	if req.PrivateKey == "" {
		acc, err = s.accounts.Create()
	} else {
		acc, err = account.FromPrivateKeyHex(req.PrivateKey)
		if err == nil {
			err = s.accounts.Add(acc)
		}
	}
	if err != nil {
		s.respondErr(w, "create account", err)
		return
	}

	s.logger.Infow("account_created", "address", acc.Address().String(), "imported", req.PrivateKey != "")
	respondJSON(w, http.StatusCreated, accountInfo(acc))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, accountInfo(acc))
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := address.Parse(mux.Vars(r)["address"])
	if err != nil {
		s.respondErr(w, "remove account", err)
		return
	}
	if err := s.accounts.Remove(addr); err != nil {
		s.respondErr(w, "remove account", err)
		return
	}
	s.logger.Infow("account_removed", "address", addr.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if (req.Message == nil) == (req.Digest == nil) {
		respondError(w, http.StatusBadRequest, "invalid request body", "exactly one of message or digest is required")
		return
	}

	var sig crypto.Signature
	if req.Digest != nil {
		digest, err := decodeHex(*req.Digest)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid digest", err.Error())
			return
		}
		sig, err = acc.SignHash(digest)
		if err != nil {
			s.respondErr(w, "sign", err)
			return
		}
	} else {
		msg, err := decodeHex(*req.Message)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid message", err.Error())
			return
		}
		sig, err = acc.Sign(msg)
		if err != nil {
			s.respondErr(w, "sign", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, SignResponse{Signature: sig.Hex()})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	msg, err := decodeHex(req.Message)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid message", err.Error())
		return
	}
	sig, err := decodeHex(req.Signature)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid signature", err.Error())
		return
	}

	valid, err := crypto.Verify(msg, sig, req.PublicKey)
	if err != nil {
		s.respondErr(w, "verify", err)
		return
	}
	respondJSON(w, http.StatusOK, VerifyResponse{Valid: valid})
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	digest, err := decodeHex(req.Digest)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid digest", err.Error())
		return
	}
	sig, err := decodeHex(req.Signature)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid signature", err.Error())
		return
	}

	pub, err := crypto.Recover(digest, sig)
	if err != nil {
		s.respondErr(w, "recover", err)
		return
	}
	respondJSON(w, http.StatusOK, RecoverResponse{
		PublicKey: pub.HexString(),
		Address:   address.FromPublicKey(pub).String(),
	})
}

func (s *Server) handleDecodeAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := address.Parse(mux.Vars(r)["address"])
	if err != nil {
		s.respondErr(w, "decode address", err)
		return
	}
	respondJSON(w, http.StatusOK, AddressInfo{
		Address: addr.String(),
		Payload: addr.Payload().Hex(),
		Hex:     addr.Hex(),
		Network: address.ActiveNetwork().String(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

// lookup resolves the {address} path variable to a registered account
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*account.Account, bool) {
	addr, err := address.Parse(mux.Vars(r)["address"])
	if err != nil {
		s.respondErr(w, "lookup account", err)
		return nil, false
	}
	acc, err := s.accounts.Get(addr)
	if err != nil {
		s.respondErr(w, "lookup account", err)
		return nil, false
	}
	return acc, true
}

func accountInfo(acc *account.Account) AccountInfo {
	return AccountInfo{
		Address:   acc.Address().String(),
		Payload:   acc.Address().Payload().Hex(),
		Hex:       acc.Address().Hex(),
		PublicKey: acc.PublicKeyHex(),
	}
}

// respondErr maps domain errors onto HTTP statuses
func (s *Server) respondErr(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorw("request_failed", "op", op, "err", err)
	}
	respondError(w, status, op+" failed", err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrAccountNotExist):
		return http.StatusNotFound
	case errors.Is(err, account.ErrAccountExist):
		return http.StatusConflict
	case errors.Is(err, crypto.ErrInvalidPrivateKey),
		errors.Is(err, crypto.ErrInvalidPublicKey),
		errors.Is(err, crypto.ErrInvalidSignature),
		errors.Is(err, crypto.ErrInvalidMessageLen),
		errors.Is(err, address.ErrAddrPrefixNotMatch),
		errors.Is(err, address.ErrInvalidAddrLen),
		errors.Is(err, address.ErrBech),
		errors.Is(err, address.ErrInvalidHexAddr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
