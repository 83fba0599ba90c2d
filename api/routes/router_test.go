package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastros/pos-backend/internal/auth"
	"github.com/lastros/pos-backend/internal/dashboard"
	"github.com/lastros/pos-backend/internal/expenses"
	"github.com/lastros/pos-backend/internal/orders"
	"github.com/lastros/pos-backend/internal/products"
	"github.com/lastros/pos-backend/internal/tenants"
	"github.com/lastros/pos-backend/internal/uploads"
	"github.com/lastros/pos-backend/internal/users"
	pkgAuth "github.com/lastros/pos-backend/pkg/auth"
	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/db/dbtest"
	"github.com/lastros/pos-backend/pkg/enums"
	"github.com/lastros/pos-backend/pkg/metrics"
	"github.com/lastros/pos-backend/pkg/outbox"
)

type testServer struct {
	handler  http.Handler
	client   *db.Client
	tenantID uuid.UUID
	cfg      *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	client := dbtest.Open(t, "router")
	tenant := dbtest.MustTenant(t, client, "restaurante-demo")

	cfg := &config.Config{
		App:       config.AppConfig{Env: "test", DefaultTenantSlug: "restaurante-demo"},
		JWT:       config.JWTConfig{Secret: "router-secret", Issuer: "lastros-test", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60},
		Password:  config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Uploads:   config.UploadsConfig{Dir: t.TempDir(), PublicPrefix: "/uploads", MaxUploadMB: 1},
		Dashboard: config.DashboardConfig{ProfitMargin: "0.35", Timezone: "UTC"},
	}

	reg := prometheus.NewRegistry()
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:          users.NewRepository(client.DB()),
		TenantRepo:        tenants.NewRepository(client.DB()),
		JWTConfig:         cfg.JWT,
		PasswordConfig:    cfg.Password,
		DefaultTenantSlug: cfg.App.DefaultTenantSlug,
	})
	require.NoError(t, err)
	productSvc, err := products.NewService(products.NewRepository(client.DB()), nil)
	require.NoError(t, err)
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(client.DB()),
		Tx:      client,
		Outbox:  outbox.NewService(outbox.NewRepository(client.DB()), nil),
		Metrics: metrics.NewOrderMetrics(reg),
	})
	require.NoError(t, err)
	expenseSvc, err := expenses.NewService(expenses.NewRepository(client.DB()))
	require.NoError(t, err)
	dashboardSvc, err := dashboard.NewService(dashboard.NewRepository(client.DB()), cfg.Dashboard)
	require.NoError(t, err)
	store, err := uploads.NewStore(cfg.Uploads, nil)
	require.NoError(t, err)

	handler := NewRouter(Dependencies{
		Config:         cfg,
		DB:             client,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: metrics.Handler(reg),
		Uploads:        store,
		Auth:           authSvc,
		Products:       productSvc,
		Orders:         orderSvc,
		Expenses:       expenseSvc,
		Dashboard:      dashboardSvc,
	})
	return &testServer{handler: handler, client: client, tenantID: tenant.ID, cfg: cfg}
}

func (s *testServer) token(t *testing.T, role enums.UserRole) string {
	t.Helper()
	user := dbtest.MustUser(t, s.client, s.tenantID, strings.ToLower(string(role))+"-"+uuid.NewString()[:8]+"@lastros.com", role)
	token, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: s.tenantID,
		Email:    user.Email,
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload), rec.Body.String())
	return payload.Error.Code
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/live", "", "").Code)
	ready := srv.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"db":"ok"`)

	srv.do(t, http.MethodGet, "/health/live", "", "")
	metricsResp := srv.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, metricsResp.Code)
	assert.Contains(t, metricsResp.Body.String(), "http_request_duration_seconds")
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/orders", "/products", "/expenses", "/dashboard/summary", "/finance/summary", "/kitchen/summary", "/auth/me"} {
		rec := srv.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterJoinsDefaultRestaurant(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/register", "", `{"email":"Caixa@Lastros.com","password":"secret1","name":"Caixa"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered auth.AuthResponse
	decodeData(t, rec, &registered)
	assert.Equal(t, srv.tenantID, registered.User.TenantID)
	assert.Equal(t, enums.UserRoleUser, registered.User.Role)

	me := srv.do(t, http.MethodGet, "/auth/me", registered.AccessToken, "")
	assert.Equal(t, http.StatusOK, me.Code)

	dup := srv.do(t, http.MethodPost, "/auth/register", "", `{"email":"caixa@lastros.com","password":"secret1","name":"Outro"}`)
	assert.Equal(t, http.StatusConflict, dup.Code)

	login := srv.do(t, http.MethodPost, "/auth/login", "", `{"email":"caixa@lastros.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	srv := newTestServer(t)
	userToken := srv.token(t, enums.UserRoleUser)

	rec := srv.do(t, http.MethodPost, "/products", userToken, `{"name":"X-Burger","price":25.9,"stock":3}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	list := srv.do(t, http.MethodGet, "/products", userToken, "")
	assert.Equal(t, http.StatusOK, list.Code)
}

func TestOrderFlow(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.token(t, enums.UserRoleAdmin)
	userToken := srv.token(t, enums.UserRoleUser)

	created := srv.do(t, http.MethodPost, "/products", adminToken, `{"name":"X-Burger","price":25.9,"stock":3}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var product products.ProductDTO
	decodeData(t, created, &product)
	assert.Equal(t, 3, product.Stock)

	body := `{"items":[{"product_id":"` + product.ID.String() + `","quantity":2,"price":25.9}],"total":51.8}`
	placed := srv.do(t, http.MethodPost, "/orders", userToken, body)
	require.Equal(t, http.StatusCreated, placed.Code, placed.Body.String())
	var order orders.OrderDTO
	decodeData(t, placed, &order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.False(t, order.TotalMismatch)

	again := srv.do(t, http.MethodPost, "/orders", userToken, body)
	assert.Equal(t, http.StatusConflict, again.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, again))

	fetched := srv.do(t, http.MethodGet, "/products/"+product.ID.String(), userToken, "")
	require.Equal(t, http.StatusOK, fetched.Code)
	var after products.ProductDTO
	decodeData(t, fetched, &after)
	assert.Equal(t, 1, after.Stock)

	listed := srv.do(t, http.MethodGet, "/orders", userToken, "")
	require.Equal(t, http.StatusOK, listed.Code)
	var history []orders.OrderDTO
	decodeData(t, listed, &history)
	assert.Len(t, history, 1)

	kitchen := srv.do(t, http.MethodGet, "/finance/summary", userToken, "")
	assert.Equal(t, http.StatusOK, kitchen.Code)

	deleted := srv.do(t, http.MethodDelete, "/products/"+product.ID.String(), adminToken, "")
	assert.Equal(t, http.StatusConflict, deleted.Code)
}

func TestOrderUnknownProduct(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodPost, "/orders", srv.token(t, enums.UserRoleUser), `{"items":[{"product_id":"missing","quantity":1,"price":1}],"total":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://caixa.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req.WithContext(context.Background()))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
