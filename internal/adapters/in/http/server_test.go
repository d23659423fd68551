package http_test

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/broker"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, subject kernel.UUID, name, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject.String(),
		"name": name,
		"role": role,
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

// newTestAPI wires a server with zero-value use-case handlers; tests here
// exercise only the HTTP surface (auth, binding, parameter validation) and
// the live streams, which need just the broker.
func newTestAPI(t *testing.T) (*echo.Echo, *broker.EventBroker) {
	t.Helper()

	b := broker.NewEventBroker()
	t.Cleanup(b.Close)

	server := httpadapter.NewServer(
		commands.CreateOrderCommandHandler{},
		commands.AssignDriverCommandHandler{},
		commands.AcceptOrderCommandHandler{},
		commands.CompleteOrderCommandHandler{},
		commands.RegisterDriverCommandHandler{},
		commands.ReportPositionCommandHandler{},
		queries.ListOrdersQueryHandler{},
		queries.GetAllDriversQueryHandler{},
		queries.GetDriverPositionQueryHandler{},
		queries.GetDriverETAQueryHandler{},
		b,
	)

	e := echo.New()
	server.RegisterRoutes(e, testSecret)
	return e, b
}

func doJSON(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	e, _ := newTestAPI(t)

	t.Run("mutating call without a token is unauthorized", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders", "", `{"items":[],"total":0,"address":""}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders", "not-a-jwt", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is unauthorized", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": kernel.NewUUID().String(),
		})
		signed, err := token.SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		rec := doJSON(e, http.MethodPost, "/api/v1/orders", signed, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without a subject is unauthorized", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "Jane"})
		signed, err := token.SignedString(testSecret)
		require.NoError(t, err)

		rec := doJSON(e, http.MethodPost, "/api/v1/orders", signed, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestValidation(t *testing.T) {
	e, _ := newTestAPI(t)
	customerToken := signToken(t, kernel.NewUUID(), "Jane Customer", httpadapter.RoleCustomer)
	dispatcherToken := signToken(t, kernel.NewUUID(), "Dana Dispatcher", httpadapter.RoleDispatcher)

	t.Run("create order with malformed body", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders", customerToken, `{"items": "nope"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create order without items", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders", customerToken,
			`{"items":[],"total":0,"address":"123 Main St"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create order with a negative item price", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders", customerToken,
			`{"items":[{"name":"Burger","price":-1,"quantity":1}],"total":-1,"address":"123 Main St"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("assign with an invalid order id", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders/not-a-uuid/assign", dispatcherToken,
			`{"driverId":"`+kernel.NewUUID().String()+`"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("assign with an invalid driver id", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/assign",
			dispatcherToken, `{"driverId":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("eta with invalid destination coordinates", func(t *testing.T) {
		rec := doJSON(e, http.MethodGet,
			"/api/v1/drivers/"+kernel.NewUUID().String()+"/eta?latitude=abc&longitude=1", customerToken, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func newStreamClient(t *testing.T, url, token string) (*bufio.Reader, func()) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	resp, err := http.DefaultClient.Do(req) //nolint:bodyclose //closed via the returned func
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	return reader, func() { resp.Body.Close() }
}

// readEventData scans the stream until the next data line and returns its
// payload.
func readEventData(t *testing.T, reader *bufio.Reader) string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			return strings.TrimSuffix(data, "\n")
		}
	}

	t.Fatal("no event data before deadline")
	return ""
}

func TestStreamOrders(t *testing.T) {
	e, b := newTestAPI(t)
	server := httptest.NewServer(e)
	defer server.Close()

	token := signToken(t, kernel.NewUUID(), "Dana Dispatcher", httpadapter.RoleDispatcher)
	reader, closeStream := newStreamClient(t, server.URL+"/api/v1/orders/stream", token)
	defer closeStream()

	item, err := order.NewItem("Burger", 10.0, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), "Jane Customer",
		[]order.Item{item}, 10.0, "123 Main St", time.Now().UTC(),
	)
	require.NoError(t, err)
	b.PublishOrder(o)

	data := readEventData(t, reader)
	assert.Contains(t, data, o.ID().String())
	assert.Contains(t, data, `"status":"PENDING"`)
}

func TestStreamDriverPosition_DeliversRetainedSnapshot(t *testing.T) {
	e, b := newTestAPI(t)
	server := httptest.NewServer(e)
	defer server.Close()

	d, err := driver.NewDriver(kernel.NewUUID(), "Alex Rider")
	require.NoError(t, err)
	require.NoError(t, d.ReportPosition(kernel.NewCoordinates(40.4168, -3.7038), time.Now().UTC()))
	b.PublishDriver(d)

	token := signToken(t, kernel.NewUUID(), "Jane Customer", httpadapter.RoleCustomer)
	reader, closeStream := newStreamClient(t,
		server.URL+"/api/v1/drivers/"+d.ID().String()+"/position/stream", token)
	defer closeStream()

	data := readEventData(t, reader)
	assert.Contains(t, data, d.ID().String())
	assert.Contains(t, data, "40.4168")
}

func TestStreamOrders_Unauthenticated(t *testing.T) {
	e, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/stream", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
