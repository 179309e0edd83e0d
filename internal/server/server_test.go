package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apikeydomain "github.com/commentpull/commentpull/internal/apikey/domain"
	commentsdomain "github.com/commentpull/commentpull/internal/comments/domain"
	"github.com/commentpull/commentpull/internal/config"
	downloaddomain "github.com/commentpull/commentpull/internal/download/domain"
	ledgerdomain "github.com/commentpull/commentpull/internal/ledger/domain"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{}

func (fakeClock) Now(context.Context) time.Time { return time.Now().UTC() }

type fakeLedger struct {
	decision ledgerdomain.Decision
	subjects []ledgerdomain.Subject
}

func (f *fakeLedger) CheckAndReserve(ctx context.Context, subject ledgerdomain.Subject, limit int) (ledgerdomain.Decision, error) {
	f.subjects = append(f.subjects, subject)
	return f.decision, nil
}

func (f *fakeLedger) Peek(ctx context.Context, subject ledgerdomain.Subject, limit int) (ledgerdomain.Decision, error) {
	return f.decision, nil
}

type fakePremium struct {
	status   premiumdomain.Status
	events   []premiumdomain.BillingEvent
	applyErr error
}

func (f *fakePremium) GetStatus(ctx context.Context, userID string) (premiumdomain.Status, error) {
	return f.status, nil
}

func (f *fakePremium) ApplyBillingEvent(ctx context.Context, ev premiumdomain.BillingEvent) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePremium) Cancel(ctx context.Context, userID string) (premiumdomain.Status, error) {
	return f.status, nil
}

type fakeDownload struct {
	recorded []string
}

func (f *fakeDownload) Record(ctx context.Context, userID, videoID string, commentCount int) {
	f.recorded = append(f.recorded, userID+"/"+videoID)
}

func (f *fakeDownload) History(ctx context.Context, userID string, limit int) ([]downloaddomain.Download, error) {
	return nil, nil
}

type fakeAPIKeys struct {
	validKey string
	owner    string
}

func (f *fakeAPIKeys) List(ctx context.Context, userID string) ([]apikeydomain.Response, error) {
	return nil, nil
}

func (f *fakeAPIKeys) Create(ctx context.Context, userID string, req apikeydomain.CreateRequest) (*apikeydomain.SecretResponse, error) {
	return &apikeydomain.SecretResponse{Name: req.Name}, nil
}

func (f *fakeAPIKeys) Revoke(ctx context.Context, userID, keyID string) error {
	return nil
}

func (f *fakeAPIKeys) Authenticate(ctx context.Context, raw string) (*apikeydomain.APIKey, error) {
	if raw != f.validKey {
		return nil, apikeydomain.ErrInvalidKey
	}
	return &apikeydomain.APIKey{UserID: f.owner}, nil
}

type fakeBilling struct {
	created []string
	err     error
}

func (f *fakeBilling) CreateSubscription(ctx context.Context, email, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, email)
	return "sub_new", nil
}

func (f *fakeBilling) CancelAtCycleEnd(ctx context.Context, subscriptionID string) error {
	return nil
}

type fakeComments struct {
	result  *commentsdomain.FetchResult
	lastReq commentsdomain.FetchRequest
}

func (f *fakeComments) Fetch(ctx context.Context, req commentsdomain.FetchRequest) (*commentsdomain.FetchResult, error) {
	f.lastReq = req
	return f.result, nil
}

type testEnv struct {
	engine   *gin.Engine
	ledger   *fakeLedger
	premium  *fakePremium
	download *fakeDownload
	apiKeys  *fakeAPIKeys
	comments *fakeComments
	billing  *fakeBilling
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		ledger:   &fakeLedger{decision: ledgerdomain.Decision{Allowed: true, Used: 1, Limit: 5, Remaining: 4}},
		premium:  &fakePremium{},
		download: &fakeDownload{},
		apiKeys:  &fakeAPIKeys{validKey: "cp_live_valid", owner: "user-1"},
		comments: &fakeComments{result: &commentsdomain.FetchResult{VideoID: "v", Comments: []commentsdomain.Comment{}}},
		billing:  &fakeBilling{},
	}

	cfg := config.Config{}
	cfg.YouTube.FreeMax = 100
	cfg.YouTube.PremiumMax = 10000
	cfg.Billing.WebhookSecret = "whsec_test"
	cfg.Billing.KeyID = "rzp_test_key"

	env.engine = NewEngine(zap.NewNop())
	srv := NewServer(ServerParams{
		Gin:         env.engine,
		Cfg:         cfg,
		Log:         zap.NewNop(),
		Clock:       fakeClock{},
		LedgerSvc:   env.ledger,
		PremiumSvc:  env.premium,
		DownloadSvc: env.download,
		APIKeySvc:   env.apiKeys,
		Comments:    env.comments,
		Billing:     env.billing,
	})
	registerRoutes(srv)

	return env
}

func (e *testEnv) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestRecordDownloadAllowed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/downloads", "user-1", gin.H{"video_id": "abc", "comment_count": 42})
	require.Equal(t, http.StatusOK, w.Code)

	var resp downloadDecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 4, resp.Remaining)

	require.Len(t, env.ledger.subjects, 1)
	assert.Equal(t, "user-1", env.ledger.subjects[0].UserID)
	assert.Equal(t, []string{"user-1/abc"}, env.download.recorded)
}

func TestRecordDownloadDenied(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.decision = ledgerdomain.Decision{Allowed: false, Used: 5, Limit: 5}

	w := env.do(http.MethodPost, "/api/downloads", "user-1", gin.H{"video_id": "abc"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp downloadDeniedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.LimitReached)
	assert.Equal(t, 5, resp.Count)
	assert.Equal(t, 5, resp.Limit)

	// Denied requests never reach the history.
	assert.Empty(t, env.download.recorded)
}

func TestRecordDownloadRequiresVideoID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/downloads", "user-1", gin.H{"comment_count": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.ledger.subjects)
}

func TestGuestDownloadsTrackedByIP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/downloads", "", gin.H{"video_id": "abc"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.ledger.subjects, 1)
	assert.Empty(t, env.ledger.subjects[0].UserID)
	assert.NotEmpty(t, env.ledger.subjects[0].IP)

	// The record call carries no user id; the history layer skips it.
	assert.Equal(t, []string{"/abc"}, env.download.recorded)
}

func TestCommentsCapByTier(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/comments?video_id=abc", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, env.comments.lastReq.MaxResults)

	env.premium.status = premiumdomain.Status{IsPremium: true}
	w = env.do(http.MethodGet, "/api/comments?video_id=abc", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10000, env.comments.lastReq.MaxResults)
}

func TestAPIKeysRequireUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/keys", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProgrammaticAPIRequiresValidKey(t *testing.T) {
	env := newTestEnv(t)
	env.premium.status = premiumdomain.Status{IsPremium: true}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments?video_id=abc", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/comments?video_id=abc", nil)
	req.Header.Set("Authorization", "Bearer cp_live_valid")
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10000, env.comments.lastReq.MaxResults)
}

func TestProgrammaticAPIRejectsLapsedOwner(t *testing.T) {
	env := newTestEnv(t)

	// The key is still valid, but its owner's subscription lapsed.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments?video_id=abc", nil)
	req.Header.Set("Authorization", "Bearer cp_live_valid")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, env.comments.lastReq.VideoID)
}

func signWebhook(body string) string {
	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func (e *testEnv) postWebhook(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewBufferString(body))
	req.Header.Set("X-Razorpay-Signature", signWebhook(body))
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewBufferString(`{"event":"subscription.activated"}`))
	req.Header.Set("X-Razorpay-Signature", "nope")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.premium.events)
}

func TestWebhookAppliesSignedEvent(t *testing.T) {
	env := newTestEnv(t)

	body := `{"event":"subscription.activated","payload":{"subscription":{"entity":{"id":"sub_123","plan_id":"plan_premium","notes":{"email":"jordan@example.com","user_id":"user-1"}}}}}`
	w := env.postWebhook(body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.premium.events, 1)
	assert.Equal(t, premiumdomain.EventActivated, env.premium.events[0].Type)
	assert.Equal(t, "sub_123", env.premium.events[0].SubscriptionID)
	assert.Equal(t, "jordan@example.com", env.premium.events[0].Email)
}

func TestWebhookAcksUnprocessableEvent(t *testing.T) {
	env := newTestEnv(t)
	env.premium.applyErr = premiumdomain.ErrNoSubscription

	// A cancellation for a subscription that never existed cannot be
	// applied no matter how often the provider redelivers it.
	body := `{"event":"subscription.cancelled","payload":{"subscription":{"entity":{"id":"sub_gone"}}}}`
	w := env.postWebhook(body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
}

func TestWebhookRetriesTransientFailure(t *testing.T) {
	env := newTestEnv(t)
	env.premium.applyErr = assert.AnError

	body := `{"event":"subscription.cancelled","payload":{"subscription":{"entity":{"id":"sub_123"}}}}`
	w := env.postWebhook(body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCheckoutCreatesSubscription(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/checkout", "user-1", gin.H{"email": "Jordan@Example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sub_new", resp["subscription_id"])
	assert.Equal(t, "rzp_test_key", resp["key_id"])
	assert.Equal(t, []string{"jordan@example.com"}, env.billing.created)
}

func TestCheckoutRequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/checkout", "user-1", gin.H{"name": "Jordan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.billing.created)
}

func TestActivateSubscriptionAppliesEvent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/subscription", "user-1", gin.H{
		"subscription_id": "sub_new",
		"email":           "jordan@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.premium.events, 1)
	ev := env.premium.events[0]
	assert.Equal(t, premiumdomain.EventActivated, ev.Type)
	assert.Equal(t, "sub_new", ev.SubscriptionID)
	assert.Equal(t, "jordan@example.com", ev.Email)
	assert.Equal(t, "user-1", ev.UserID)
}

func TestActivateSubscriptionRequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/subscription", "user-1", gin.H{"subscription_id": "sub_new"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.premium.events)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
