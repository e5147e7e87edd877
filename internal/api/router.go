package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/azrilhafizi/kirim-backend/internal/api/handlers"
	"github.com/azrilhafizi/kirim-backend/internal/api/httpx"
	"github.com/azrilhafizi/kirim-backend/internal/api/validate"
	"github.com/azrilhafizi/kirim-backend/internal/config"
	"github.com/azrilhafizi/kirim-backend/internal/metrics"
	"github.com/azrilhafizi/kirim-backend/internal/middleware"
	"github.com/azrilhafizi/kirim-backend/internal/repository"
	"github.com/azrilhafizi/kirim-backend/internal/services"
)

type Deps struct {
	Cfg          config.Config
	Accounts     *services.AccountService
	Recipients   *services.RecipientService
	Transfers    *services.TransferService
	AuthHandler  *handlers.AuthHandler
	AuthRequired func(http.Handler) http.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", d.AuthHandler.Login)
		r.Post("/auth/refresh", d.AuthHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(d.AuthRequired)

			r.Get("/account", func(w http.ResponseWriter, r *http.Request) {
				a, err := d.Accounts.Current(r.Context())
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, a)
			})

			r.Get("/recipients", func(w http.ResponseWriter, r *http.Request) {
				list, err := d.Recipients.List(r.Context())
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, list)
			})

			r.Get("/recipients/recent", func(w http.ResponseWriter, r *http.Request) {
				list, err := d.Recipients.Recent(r.Context())
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, list)
			})

			r.Get("/recipients/{id}", func(w http.ResponseWriter, r *http.Request) {
				rec, err := d.Recipients.ByID(r.Context(), chi.URLParam(r, "id"))
				if errors.Is(err, repository.ErrRecipientNotFound) {
					httpx.WriteError(w, http.StatusNotFound, "not_found", "recipient not found", nil)
					return
				}
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, rec)
			})

			r.Post("/recipients", func(w http.ResponseWriter, r *http.Request) {
				var in services.RecipientInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "bad request", nil)
					return
				}
				var errs validate.Errs
				if e := validate.Required("name", in.Name); e != nil {
					errs = append(errs, *e)
				}
				if e := validate.Required("account_number", in.AccountNumber); e != nil {
					errs = append(errs, *e)
				}
				if len(errs) > 0 {
					httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
					return
				}
				rec, err := d.Recipients.Add(r.Context(), in)
				if errors.Is(err, repository.ErrDuplicateRecipient) {
					httpx.WriteError(w, http.StatusConflict, "duplicate", "recipient already exists", nil)
					return
				}
				if err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusCreated, rec)
			})

			r.Post("/recipients/import", func(w http.ResponseWriter, r *http.Request) {
				imported, err := d.Recipients.ImportContacts(r.Context())
				if errors.Is(err, services.ErrContactsAccessDenied) {
					httpx.WriteError(w, http.StatusForbidden, "access_denied", err.Error(), nil)
					return
				}
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "import failed", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{
					"imported": len(imported),
					"recipients": imported,
				})
			})

			r.Get("/transactions", func(w http.ResponseWriter, r *http.Request) {
				list, err := d.Transfers.History(r.Context())
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, list)
			})

			r.Get("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
				tx, err := d.Transfers.GetByID(r.Context(), chi.URLParam(r, "id"))
				if errors.Is(err, repository.ErrTransactionNotFound) {
					httpx.WriteError(w, http.StatusNotFound, "not_found", "transaction not found", nil)
					return
				}
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, tx)
			})

			r.Post("/transfers", func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					RecipientID string `json:"recipient_id"`
					Amount      string `json:"amount"`
					Note        string `json:"note"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "bad request", nil)
					return
				}
				receipt, err := d.Transfers.Transfer(r.Context(), services.TransferInput{
					RecipientID: req.RecipientID,
					Amount:      req.Amount,
					Note:        req.Note,
					PIN:         r.Header.Get("X-Transfer-PIN"),
					IdemKey:     r.Header.Get("Idempotency-Key"),
				})
				if err != nil {
					writeTransferError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusCreated, receipt)
			})
		})
	})

	return r
}

// writeTransferError maps the workflow taxonomy onto HTTP statuses with
// stable codes.
func writeTransferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingRecipient):
		httpx.WriteError(w, http.StatusBadRequest, "missing_recipient", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error(), nil)
	case errors.Is(err, services.ErrAuthUnavailable), errors.Is(err, services.ErrAuthNotEnrolled):
		httpx.WriteError(w, http.StatusServiceUnavailable, "auth_unavailable", err.Error(), nil)
	case errors.Is(err, services.ErrChallengeDeclined):
		httpx.WriteError(w, http.StatusForbidden, "challenge_declined", err.Error(), nil)
	case errors.Is(err, services.ErrTransferInProgress):
		httpx.WriteError(w, http.StatusConflict, "transfer_in_progress", err.Error(), nil)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "transfer_failed", services.ErrTransferFailed.Error(), nil)
	}
}
