package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	catalogdomain "sheetsync/backend/internal/domain/catalog"
	"sheetsync/backend/internal/infrastructure/token"
	admindomain "sheetsync/backend/internal/usecase/admin"
)

// sheetTokenHeader carries the time-boxed sheet access token.
const sheetTokenHeader = "X-Sheet-Token"

// exportTimeLayout matches the timestamp format the sheet client parses.
const exportTimeLayout = "2006-01-02 15:04:05"

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))

	gated := s.sheetTokenMiddleware
	s.router.Handle("/sheets/v1/products", gated(http.HandlerFunc(s.handleProducts)))

	s.router.Handle("/admin/login", http.HandlerFunc(s.handleAdminLogin))

	admin := s.adminAuthMiddleware
	s.router.Handle("/admin/settings", admin(http.HandlerFunc(s.handleAdminSettings)))
	s.router.Handle("/admin/settings/secret", admin(http.HandlerFunc(s.handleGenerateSecret)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetProducts(w, r)
	case http.MethodPost:
		s.handleUpdateProducts(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalogService.FetchCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []catalogdomain.ProductRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("%d catalog items exported.", len(records)),
		"time":    time.Now().Format(exportTimeLayout),
		"count":   len(records),
		"data":    records,
	})
}

func (s *Server) handleUpdateProducts(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Products []catalogdomain.ProductRecord `json:"products"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Products data must be an array.")
		return
	}
	if payload.Products == nil {
		writeError(w, http.StatusBadRequest, "Products data must be an array.")
		return
	}

	result, err := s.catalogService.Reconcile(r.Context(), payload.Products)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNoProductsProcessed) {
			writeError(w, http.StatusBadRequest, "No products were created or updated.")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	succeeded := len(result.Created) + len(result.Updated)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"message": fmt.Sprintf("%d products processed successfully (%d created, %d updated).",
			succeeded, len(result.Created), len(result.Updated)),
		"data": result,
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "password required")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return
	}

	sessionToken, err := s.adminService.Login(r.Context(), payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, admindomain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid password")
		case errors.Is(err, admindomain.ErrDisabled):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": sessionToken})
}

func (s *Server) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": s.adminService.Settings()})
}

func (s *Server) handleGenerateSecret(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	secret, err := token.GenerateSecret(token.SecretLength)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"secret_key": secret})
}

// sheetTokenMiddleware authorizes sheet requests: the header token must
// decode against the configured secret and name the configured sheet id.
// Decoding is pure; nothing is persisted between calls.
func (s *Server) sheetTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(sheetTokenHeader)
		if raw == "" {
			writeError(w, http.StatusForbidden, "sheet token required")
			return
		}

		sheetID, err := token.Decode(raw, s.gate.Secret, time.Now().UnixMilli(), s.gate.Expiry.Milliseconds())
		if err != nil || sheetID == "" || sheetID != s.gate.SheetID {
			writeError(w, http.StatusForbidden, "invalid or expired sheet token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := extractBearerToken(r.Header.Get("Authorization"))
		if bearer == "" {
			writeError(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		if err := s.adminService.VerifyToken(r.Context(), bearer); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
