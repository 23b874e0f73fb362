package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/repo"
	cartsvc "github.com/avolkov/storefront/internal/service/cart"
	ordersvc "github.com/avolkov/storefront/internal/service/order"
	"github.com/avolkov/storefront/internal/service/token"
)

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Product{}, &models.User{}, &models.RefreshToken{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

// newTestEnv wires the handlers over sqlite; kafka and elasticsearch stay
// nil, the publish/index helpers skip them.
func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)

	catalogRepo := repo.NewCatalog(db)
	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	return &testEnv{
		T:       t,
		E:       echo.New(),
		DB:      db,
		Auth:    &AuthHandler{DB: db, Tokens: tokens},
		Product: &ProductHandler{Catalog: catalogRepo},
		Cart:    &CartHandler{Svc: cartsvc.NewService(repo.NewCart(db), catalogRepo)},
		Order:   &OrderHandler{Svc: ordersvc.NewService(repo.NewTxManager(db), repo.NewOrders(db))},
	}
}

// doJSON builds an echo context carrying the identity the token middleware
// would have set.
func (env *testEnv) doJSON(method, path string, body interface{}, userID uint, role string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if userID != 0 {
		c.Set("userID", userID)
		c.Set("role", role)
	}
	return rec, c
}

func (env *testEnv) seedProduct(p models.Product) models.Product {
	env.T.Helper()
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
