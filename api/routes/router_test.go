package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambaservices/storefront-backend/internal/accesscodes"
	"github.com/mambaservices/storefront-backend/internal/auth"
	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	"github.com/mambaservices/storefront-backend/internal/forms"
	"github.com/mambaservices/storefront-backend/internal/fulfillment"
	"github.com/mambaservices/storefront-backend/internal/notifications"
	"github.com/mambaservices/storefront-backend/internal/orders"
	"github.com/mambaservices/storefront-backend/internal/users"
	"github.com/mambaservices/storefront-backend/pkg/config"
)

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = env

	authSvc, err := auth.NewService(auth.ServiceParams{UserRepo: users.NewMemoryRepository()})
	require.NoError(t, err)
	orderSvc, err := orders.NewService(orders.ServiceParams{Repo: orders.NewMemoryRepository()})
	require.NoError(t, err)
	codeSvc, err := accesscodes.NewService(accesscodes.ServiceParams{
		Repo:          accesscodes.NewMemoryRepository(),
		GeneratorLink: "https://mambagen.up.railway.app/gen.html",
	})
	require.NoError(t, err)
	accessSvc, err := discordaccess.NewService(discordaccess.ServiceParams{Repo: discordaccess.NewMemoryRepository()})
	require.NoError(t, err)
	formsSvc, err := forms.NewService(forms.ServiceParams{
		Repo:       forms.NewMemoryRepository(),
		AccessLink: "https://mambagen.up.railway.app/gen.html",
	})
	require.NoError(t, err)
	dispatcher, err := fulfillment.NewService(fulfillment.ServiceParams{
		Orders:        orderSvc,
		AccessCodes:   codeSvc,
		DiscordAccess: accessSvc,
		Sender:        notifications.NewNoopSender(nil),
		GeneratorLink: "https://mambagen.up.railway.app/gen.html",
	})
	require.NoError(t, err)

	return NewRouter(RouterParams{
		Config:        cfg,
		Auth:          authSvc,
		Orders:        orderSvc,
		AccessCodes:   codeSvc,
		DiscordAccess: accessSvc,
		Forms:         formsSvc,
		Fulfillment:   dispatcher,
	})
}

func TestRouterCoreRoutes(t *testing.T) {
	router := newTestRouter(t, "dev")

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
	}{
		{"ping", http.MethodGet, "/ping", nil, http.StatusOK},
		{"health live", http.MethodGet, "/health/live", nil, http.StatusOK},
		{"signup", http.MethodPost, "/auth/signup", map[string]string{"email": "a@b.co", "password": "secret1"}, http.StatusCreated},
		{"login", http.MethodPost, "/auth/login", map[string]string{"email": "a@b.co", "password": "secret1"}, http.StatusOK},
		{"orders create", http.MethodPost, "/orders", map[string]string{
			"email": "a@b.co", "productId": "receipts-31", "productName": "MambaReceipts", "price": "99 PLN",
		}, http.StatusCreated},
		{"orders list", http.MethodGet, "/orders/a@b.co", nil, http.StatusOK},
		{"orders paid summary", http.MethodGet, "/orders/a@b.co/paid", nil, http.StatusOK},
		{"claim exhausted pool", http.MethodPost, "/access-codes/claim", map[string]string{
			"email": "a@b.co", "productId": "obywatel",
		}, http.StatusNotFound},
		{"discord check", http.MethodGet, "/discord/access/a@b.co", nil, http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != nil {
				raw, err := json.Marshal(tt.body)
				require.NoError(t, err)
				req = httptest.NewRequest(tt.method, tt.target, bytes.NewReader(raw))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterTestTriggerOnlyInDev(t *testing.T) {
	body := []byte(`{"email":"a@b.co"}`)

	dev := newTestRouter(t, "dev")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	dev.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	prod := newTestRouter(t, "prod")
	req = httptest.NewRequest(http.MethodPost, "/webhooks/payments/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	prod.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterWebhookWithoutClientIs500(t *testing.T) {
	router := newTestRouter(t, "prod")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
