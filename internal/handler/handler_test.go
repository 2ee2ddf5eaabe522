package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivamgupta214/outfox-health-assessment/internal/chat"
	"github.com/shivamgupta214/outfox-health-assessment/internal/config"
	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
	"github.com/shivamgupta214/outfox-health-assessment/internal/service"
	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/response"
)

var testWSConfig = config.WebSocketConfig{
	PingInterval:     time.Second,
	PongWait:         5 * time.Second,
	WriteWait:        time.Second,
	HandshakeTimeout: time.Second,
	MaxMessageSize:   4096,
	SendBuffer:       8,
}

type fakeService struct {
	mu        sync.Mutex
	imported  string
	importErr error
	query     domain.ProviderQuery
	providers []domain.Provider
	searchErr error
	asked     []string
}

func (f *fakeService) importAll(_ context.Context, r io.Reader) (int, error) {
	if f.importErr != nil {
		return 0, f.importErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	f.imported = string(b)
	f.mu.Unlock()
	return strings.Count(string(b), "\n") - 1, nil
}

func (f *fakeService) ImportHospitalData(ctx context.Context, r io.Reader) (int, error) {
	return f.importAll(ctx, r)
}

func (f *fakeService) ImportRatings(ctx context.Context, r io.Reader) (int, error) {
	return f.importAll(ctx, r)
}

func (f *fakeService) SearchProviders(_ context.Context, q domain.ProviderQuery) ([]domain.Provider, error) {
	f.query = q
	return f.providers, f.searchErr
}

func (f *fakeService) Answer(_ context.Context, query string) string {
	f.mu.Lock()
	f.asked = append(f.asked, query)
	f.mu.Unlock()
	return fmt.Sprintf("Found 3 providers for %q.", query)
}

func newTestRouter(svc service.NavigatorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r)
	NewWSHandler(svc, testWSConfig).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadHospitalData(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	body, contentType := multipartBody(t, "charges.CSV", "a,b\n1,2\n3,4\n")
	req := httptest.NewRequest(http.MethodPost, routeUploadHospitalData, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got response.MessageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Data inserted successfully", got.Message)
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, "a,b\n1,2\n3,4\n", svc.imported)
}

func TestUploadRejectsNonCSV(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body, contentType := multipartBody(t, "ratings.xlsx", "x")
	req := httptest.NewRequest(http.MethodPost, routeUploadHospitalRating, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var got response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, detailNotCSV, got.Detail)
}

func TestUploadImportErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing column", fmt.Errorf("%w: provider_id", service.ErrMissingColumn), http.StatusBadRequest},
		{"storage", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeService{importErr: tt.err})

			body, contentType := multipartBody(t, "ratings.csv", "x\n")
			req := httptest.NewRequest(http.MethodPost, routeUploadHospitalRating, body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			var got response.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.err.Error(), got.Detail)
		})
	}
}

func TestSearchProviders(t *testing.T) {
	rating := 4
	svc := &fakeService{providers: []domain.Provider{{ProviderID: 1, ProviderName: "Southeast Health", OverallRating: &rating}}}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, routeProviders+"?zip_code=36301&radius_km=25&ms_drg=chest+pain", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ProviderQuery{ZipCode: "36301", RadiusKM: 25, MSDRG: "chest pain"}, svc.query)

	var got struct {
		Status string            `json:"status"`
		Data   []domain.Provider `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "success", got.Status)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Southeast Health", got.Data[0].ProviderName)
}

func TestSearchProvidersRequiresAllFields(t *testing.T) {
	r := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, routeProviders+"?zip_code=36301", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchProvidersFailure(t *testing.T) {
	r := newTestRouter(&fakeService{searchErr: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, routeProviders+"?zip_code=1&radius_km=1&ms_drg=x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, routeHealth, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

// The chat session and the real WebSocket transport against the ask route.
func TestChatSessionAgainstAskSocket(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(newTestRouter(svc))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := chat.NewSession(ctx, chat.Options{
		URL:    "ws" + strings.TrimPrefix(srv.URL, "http") + routeAsk,
		Dialer: transport.NewWSDialer(testWSConfig),
	})
	require.NoError(t, err)
	defer s.Close()

	require.Eventually(t, func() bool { return s.State() == chat.StateOpen }, 3*time.Second, 10*time.Millisecond)

	s.Input().SetPending("  chest pain ")
	require.NoError(t, <-s.SubmitPending())
	assert.Empty(t, s.Input().Pending())

	require.Eventually(t, func() bool { return s.Log().Len() == 3 }, 3*time.Second, 10*time.Millisecond)

	msgs := s.Messages()
	assert.Equal(t, chat.RoleStatus, msgs[0].Role)
	assert.Equal(t, chat.StatusConnected, msgs[0].Content)
	assert.Equal(t, chat.RoleUser, msgs[1].Role)
	assert.Equal(t, "chest pain", msgs[1].Content)
	assert.Equal(t, chat.RoleAI, msgs[2].Role)
	assert.Equal(t, `Found 3 providers for "chest pain".`, msgs[2].Content)
}

func TestAskSocketZeroConfigUsesDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewWSHandler(&fakeService{}, config.WebSocketConfig{}).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+routeAsk, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("knee")))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, reply, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `Found 3 providers for "knee".`, string(reply))
}
