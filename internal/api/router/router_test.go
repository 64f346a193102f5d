package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/config"
	"github.com/d60-Lab/quickcart/internal/api/handler"
	"github.com/d60-Lab/quickcart/internal/auth"
	"github.com/d60-Lab/quickcart/internal/cache"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/database"
)

const location = "loc-api"

type apiEnv struct {
	r        *gin.Engine
	db       *gorm.DB
	tokens   *auth.Manager
	customer *model.User
	address  *model.Address
	product  *model.Product
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "api.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, repository.Migrate(db))
	require.NoError(t, repository.NewLocationRepository(db).Ensure(ctx, &model.Location{ID: location, Name: "API Store"}))

	cfg := &config.Config{Server: config.ServerConfig{RequestTimeout: 5 * time.Second}}
	tokens := auth.NewManager("api-secret", time.Hour)
	h := handler.NewHandler(handler.Services{
		Orders:     service.NewOrderService(db, nil, location),
		Wallet:     service.NewWalletService(db),
		Catalog:    service.NewCatalogService(db, cache.NewProductCache(nil, 0), location),
		Users:      service.NewUserService(db, tokens),
		Deliveries: service.NewDeliveryService(db),
		Stats:      service.NewStatsService(db, 10),
	})
	r, err := Setup(cfg, h, tokens)
	require.NoError(t, err)

	env := &apiEnv{r: r, db: db, tokens: tokens}
	env.customer = env.user(t, "cust@example.com", model.RoleCustomer)
	env.address = &model.Address{ID: uuid.New().String(), UserID: env.customer.ID, Street: "5 Lake Rd", City: "Delhi", Zip: "110001", CreatedAt: time.Now()}
	require.NoError(t, repository.NewAddressRepository(db).Create(ctx, env.address))

	cat := &model.Category{ID: uuid.New().String(), Name: "Snacks", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repository.NewCategoryRepository(db).Create(ctx, cat))
	env.product = &model.Product{
		ID: uuid.New().String(), SKU: "CHIPS-1", Name: "Chips", Price: decimal.RequireFromString("20.00"),
		CategoryID: cat.ID, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, repository.NewProductRepository(db).Create(ctx, env.product))
	require.NoError(t, repository.NewStockRepository(db).Set(ctx, env.product.ID, location, 5))
	return env
}

func (e *apiEnv) user(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New().String(), Email: email, Name: email, Password: "x", Role: role, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repository.NewUserRepository(e.db).Create(context.Background(), u))
	return u
}

func (e *apiEnv) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := e.tokens.Issue(u.ID, u.Role)
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (e *apiEnv) orderBody(qty int, total, method string) map[string]any {
	return map[string]any{
		"cartItems":     []map[string]any{{"id": e.product.ID, "quantity": qty, "price": 20}},
		"totalPrice":    json.Number(total),
		"addressId":     e.address.ID,
		"paymentMethod": method,
	}
}

func TestHealthAndPublicCatalog(t *testing.T) {
	e := setupAPI(t)
	w, _ := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := e.do(t, http.MethodGet, "/api/products?search=chip", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)

	w, _ = e.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAndRoles(t *testing.T) {
	e := setupAPI(t)
	w, _ := e.do(t, http.MethodGet, "/api/orders/myorders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/orders/myorders", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cust := e.token(t, e.customer)
	w, _ = e.do(t, http.MethodGet, "/api/orders", cust, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/delivery/available", cust, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	super := e.token(t, e.user(t, "root@example.com", model.RoleSuperAdmin))
	w, _ = e.do(t, http.MethodGet, "/api/orders", super, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	e := setupAPI(t)
	w, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "New", "email": "new@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	w, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "new@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "new@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	tok := body["data"].(map[string]any)["token"].(string)

	w, _ = e.do(t, http.MethodGet, "/api/users/profile", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	e := setupAPI(t)
	cust := e.token(t, e.customer)

	w, body := e.do(t, http.MethodPost, "/api/orders", cust, e.orderBody(2, "40.00", "COD"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := body["data"].(map[string]any)
	assert.Equal(t, "PENDING", order["status"])

	w, _ = e.do(t, http.MethodPost, "/api/orders", cust, e.orderBody(10, "200.00", "COD"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/orders", cust, e.orderBody(1, "20.00", "BITCOIN"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/orders", cust, e.orderBody(1, "20.00", "WALLET"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = e.do(t, http.MethodPost, "/api/wallet/add", cust, map[string]any{"amount": 100})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", body["data"].(map[string]any)["walletBalance"])

	w, _ = e.do(t, http.MethodPost, "/api/orders", cust, e.orderBody(1, "20.00", "WALLET"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = e.do(t, http.MethodGet, "/api/wallet", cust, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "80", body["data"].(map[string]any)["walletBalance"])

	w, body = e.do(t, http.MethodGet, "/api/orders/myorders", cust, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]any), 2)
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	e := setupAPI(t)
	cust := e.token(t, e.customer)
	admin := e.token(t, e.user(t, "admin@example.com", model.RoleAdmin))
	driver := e.token(t, e.user(t, "driver@example.com", model.RoleDriver))

	w, body := e.do(t, http.MethodPost, "/api/orders", cust, e.orderBody(1, "20.00", "COD"))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := body["data"].(map[string]any)["id"].(string)

	w, _ = e.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", admin, map[string]any{"status": "DELIVERED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = e.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", admin, map[string]any{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = e.do(t, http.MethodPost, "/api/delivery/"+orderID+"/accept", driver, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deliveryID := body["data"].(map[string]any)["id"].(string)

	w, _ = e.do(t, http.MethodPut, "/api/orders/"+orderID+"/cancel", cust, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPut, "/api/delivery/"+deliveryID+"/complete", driver, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = e.do(t, http.MethodGet, "/api/orders/"+orderID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DELIVERED", body["data"].(map[string]any)["status"])

	w, _ = e.do(t, http.MethodGet, "/api/orders/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/orders/stats?period=daily", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/orders/stats?period=hourly", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductAdminEndpoints(t *testing.T) {
	e := setupAPI(t)
	admin := e.token(t, e.user(t, "admin@example.com", model.RoleAdmin))

	w, _ := e.do(t, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Bad", "sku": "!!", "price": 10, "categoryId": e.product.CategoryID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Nachos", "sku": "NACHO-1", "price": 45, "categoryId": e.product.CategoryID, "stock": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = e.do(t, http.MethodGet, "/api/products/stats/lowstock", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
