package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"baul-admin-api/internal/adapters/storage"
	"baul-admin-api/internal/database"
	"baul-admin-api/internal/middleware"
	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"
	"baul-admin-api/internal/repositories/sqlite"
	"baul-admin-api/internal/services"
)

type testEnv struct {
	router   *gin.Engine
	store    repositories.Store
	tokens   *middleware.AuthService
	services *services.ServiceContainer
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.NewMigrationManager(db, testLogger()).RunMigrations())
	store := sqlite.NewStore(db, testLogger())
	t.Cleanup(func() { store.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: "test-secret", TokenDuration: time.Hour})
	container, err := services.NewServiceContainer(store, &services.ServiceConfig{
		Admin:       services.AdminCredentials{Email: "admin@baul.com", PasswordHash: string(hash)},
		TokenIssuer: tokens,
		TokenTTL:    time.Hour,
		Archive:     storage.NewMemoryFileStorage(),
		Logger:      testLogger(),
	})
	require.NoError(t, err)

	config := &RouterConfig{
		ProductService: container.ProductService,
		StatsService:   container.StatsService,
		PricingService: container.PricingService,
		ImportService:  container.ImportService,
		AuthService:    container.AuthService,
		TokenAuth:      tokens,
		Logger:         testLogger(),
		PricingRate:    "1000-M",
	}
	router := gin.New()
	SetupMiddleware(router, config)
	require.NoError(t, SetupRoutes(router, config))

	return &testEnv{router: router, store: store, tokens: tokens, services: container}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.GenerateToken("admin@baul.com", "admin@baul.com", "admin@baul.com", []string{string(middleware.RoleAdmin)})
	require.NoError(t, err)
	return token
}

func (e *testEnv) seed(t *testing.T, id, name string, price float64, published bool) {
	t.Helper()
	sku := "SKU-" + id
	product := &models.Product{
		ID:         id,
		Name:       name,
		SKU:        &sku,
		Type:       models.ProductTypeSimple,
		Published:  published,
		Price:      models.Price{Normal: models.Number(price)},
		Inventory:  models.Number(5),
		Categories: []string{"Merceria"},
	}
	require.NoError(t, e.store.Products().Create(context.Background(), product))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestPricing_Lookup(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "p1", "Hilo Rojo", 100, true)
	env.seed(t, "p2", "Aguja", 50, false)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "by id with quantity",
			query:      "?id=p1&cantidad=3",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "p1", body["id"])
				pricing := body["pricing"].(map[string]any)
				assert.Equal(t, 3.0, pricing["cantidad"])
				assert.Equal(t, 100.0, pricing["precioUnitario"])
				assert.Equal(t, 300.0, pricing["precioTotal"])
			},
		},
		{
			name:       "by codigo",
			query:      "?codigo=SKU-p1",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "p1", body["id"])
			},
		},
		{
			name:       "unpublished id",
			query:      "?id=p2",
			wantStatus: http.StatusForbidden,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Producto no publicado", body["error"])
				assert.Equal(t, false, body["publicado"])
				assert.Equal(t, "Solo se pueden consultar precios de productos publicados", body["mensaje"])
			},
		},
		{
			name:       "unpublished name is not found",
			query:      "?nombre=Aguja",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing key",
			query:      "",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Debe enviar id, codigo o nombre", body["error"])
			},
		},
		{
			name:       "unknown id",
			query:      "?id=nada",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Producto no encontrado", body["error"])
			},
		},
		{
			name:       "all published",
			query:      "?all=sí",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, 1.0, body["total"])
				assert.Len(t, body["items"], 1)
				assert.Contains(t, body["filtro"], "publicado")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/precios"+tt.query, "", nil, "")
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			if tt.check != nil {
				tt.check(t, decode(t, w))
			}
		})
	}
}

func TestPricing_Preflight(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodOptions, "/api/precios", "", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestPricing_Batch(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "p1", "Hilo Rojo", 100, true)
	env.seed(t, "p2", "Aguja", 50, false)

	body := []byte(`{"items":[
		{"id":"p1","cantidad":2},
		{"id":"p2"},
		{"id":"nada"},
		{"producto":{"id":"x","nombre":"Embebido","publicado":true,"precio":{"normal":"10"}},"cantidad":"4"}
	]}`)
	w := env.do(t, http.MethodPost, "/api/precios", "", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 4)

	first := items[0].(map[string]any)
	assert.Equal(t, 200.0, first["pricing"].(map[string]any)["precioTotal"])

	second := items[1].(map[string]any)
	assert.Equal(t, "Producto no publicado", second["error"])
	assert.Equal(t, false, second["publicado"])

	third := items[2].(map[string]any)
	assert.Equal(t, "Producto no encontrado", third["error"])
	assert.NotNil(t, third["input"])

	fourth := items[3].(map[string]any)
	assert.Equal(t, 40.0, fourth["pricing"].(map[string]any)["precioTotal"])

	w = env.do(t, http.MethodPost, "/api/precios", "", []byte(`{"items":[]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items vacío", decode(t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/precios", "", []byte(`{"otro":1}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/precios", "", []byte(`{no json`), "application/json")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/productos", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos", "not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos", env.adminToken(t), nil, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	viewer, err := env.tokens.GenerateToken("u1", "u1", "u1@baul.com", []string{"viewer"})
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, "/api/v1/productos", viewer, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodOptions, "/api/v1/productos", "", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestAuth_LoginAndMe(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", []byte(`{"email":"admin@baul.com","password":"secreto"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "admin@baul.com", me["email"])
	assert.Equal(t, []any{"admin"}, me["roles"])

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", []byte(`{"email":"admin@baul.com","password":"incorrecta"}`), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Credenciales inválidas.", decode(t, w)["message"])

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", []byte(`{"email":"admin","password":"secreto"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", []byte(`{"token":"`+token+`"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3600.0, decode(t, w)["expires_in"])
}

func TestProducts_CreateGetAndUpdate(t *testing.T) {
	env := setupTestEnv(t)
	token := env.adminToken(t)

	form := []byte(`{"id":"n1","nombre":"Botón","precio":{"normal":"120"},"inventario":-3,"categorias":"Merceria, Botones"}`)
	w := env.do(t, http.MethodPost, "/api/v1/productos", token, form, "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, 0.0, created["inventario"])
	assert.Equal(t, []any{"Merceria", "Botones"}, created["categorias"])

	w = env.do(t, http.MethodPost, "/api/v1/productos", token, form, "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/productos", token, []byte(`{"nombre":"Sin precio","categorias":["A"]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/productos", token, form, "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos/n1", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Botón", decode(t, w)["nombre"])

	w = env.do(t, http.MethodPatch, "/api/v1/productos/n1/precio", token, []byte(`{"normal":150}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 150.0, decode(t, w)["precio"].(map[string]any)["normal"])

	w = env.do(t, http.MethodPatch, "/api/v1/productos/n1/inventario", token, []byte(`{"inventario":-1}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos/nada", token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos/categorias", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `["Botones","Merceria"]`, w.Body.String())
}

func TestProducts_BatchEdits(t *testing.T) {
	env := setupTestEnv(t)
	token := env.adminToken(t)
	env.seed(t, "p1", "Hilo", 100, true)
	env.seed(t, "p2", "Aguja", 50, true)
	env.seed(t, "p3", "Tela", 80, true)

	w := env.do(t, http.MethodPost, "/api/v1/productos/editar", token, []byte(`{"ids":["p1","p2"],"publicado":false}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2.0, decode(t, w)["actualizados"])

	w = env.do(t, http.MethodGet, "/api/v1/productos?publicado=No+Publicado", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decode(t, w)["total"])

	w = env.do(t, http.MethodPost, "/api/v1/productos/eliminar", token, []byte(`{"ids":["p1","p3"]}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2.0, decode(t, w)["eliminados"])

	w = env.do(t, http.MethodPost, "/api/v1/productos/eliminar", token, []byte(`{"ids":[]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	n, err := env.store.Products().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func multipartUpload(t *testing.T, filename, content string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("archivo", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes(), writer.FormDataContentType()
}

func TestProducts_Import(t *testing.T) {
	env := setupTestEnv(t)
	token := env.adminToken(t)

	valid := "id,nombre,precio_normal,categorias,inventario\n" +
		"A1,Hilo,\"100,5\",Merceria,3\n" +
		"A2,Aguja,50,Merceria;Agujas,\n"
	body, contentType := multipartUpload(t, "lote.csv", valid)
	w := env.do(t, http.MethodPost, "/api/v1/productos/importar", token, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)
	assert.Equal(t, 2.0, result["importados"])
	assert.Equal(t, "Se cargaron exitosamente 2 productos.", result["mensaje"])

	invalid := "id,nombre,precio_normal,categorias\n" +
		"B1,Hilo,100,Merceria\n" +
		"B2,,0,\n"
	body, contentType = multipartUpload(t, "lote.csv", invalid)
	w = env.do(t, http.MethodPost, "/api/v1/productos/importar", token, body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	rejected := decode(t, w)
	assert.Contains(t, rejected["mensaje"], "Se encontraron 1 productos con errores")
	errores := rejected["errores"].([]any)
	require.Len(t, errores, 1)
	assert.Equal(t, "B2", errores[0].(map[string]any)["id"])

	body, contentType = multipartUpload(t, "lote.xlsx", valid)
	w = env.do(t, http.MethodPost, "/api/v1/productos/importar", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType = multipartUpload(t, "vacio.csv", "id,nombre\n")
	w = env.do(t, http.MethodPost, "/api/v1/productos/importar", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	n, err := env.store.Products().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "rejected uploads write nothing")
}

func TestProducts_ArchivedImports(t *testing.T) {
	env := setupTestEnv(t)
	token := env.adminToken(t)

	w := env.do(t, http.MethodGet, "/api/v1/productos/importaciones", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["archivos"])

	content := "id,nombre,precio_normal,categorias\nA1,Hilo,100,Merceria\n"
	body, contentType := multipartUpload(t, "lote.csv", content)
	w = env.do(t, http.MethodPost, "/api/v1/productos/importar", token, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/productos/importaciones", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	files := decode(t, w)["archivos"].([]any)
	require.Len(t, files, 1)
	file := files[0].(map[string]any)
	assert.Equal(t, "lote.csv", file["nombreOriginal"])
	name := file["nombre"].(string)
	assert.True(t, strings.HasSuffix(name, "-lote.csv"), name)

	w = env.do(t, http.MethodGet, "/api/v1/productos/importaciones/"+name, token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), name)

	w = env.do(t, http.MethodDelete, "/api/v1/productos/importaciones/"+name, token, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos/importaciones/"+name, token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/productos/importaciones/..", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_TemplateAndExport(t *testing.T) {
	env := setupTestEnv(t)
	token := env.adminToken(t)
	env.seed(t, "p1", "Hilo", 100, true)

	w := env.do(t, http.MethodGet, "/api/v1/productos/plantilla", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "plantilla_productos.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	w = env.do(t, http.MethodGet, "/api/v1/productos/exportar", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "productos_")
	assert.Contains(t, w.Body.String(), "p1")
	assert.Contains(t, w.Body.String(), "Hilo")
}

func TestStats_SalesReport(t *testing.T) {
	env := setupTestEnv(t)
	token := env.adminToken(t)
	require.NoError(t, env.store.Sales().Create(context.Background(), &models.Sale{
		ID: "v1", Date: models.DateText("2024-03-05"), Total: 1000, PaymentStatus: "pagado",
	}))

	w := env.do(t, http.MethodGet, "/api/v1/estadisticas/ventas?rango=custom&desde=2024-03-01&hasta=2024-03-31", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode(t, w)
	assert.Equal(t, "custom", report["rango"])
	assert.Equal(t, "2024-03-01", report["periodo"].(map[string]any)["desde"])
	assert.Contains(t, report, "kpis")
	assert.Contains(t, report, "segmentos")

	w = env.do(t, http.MethodGet, "/api/v1/estadisticas/ventas", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30d", decode(t, w)["rango"])

	w = env.do(t, http.MethodGet, "/api/v1/estadisticas/ventas?rango=semana", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
