package backend

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/briefpay/types"
)

func testBrief() *types.BriefRequest {
	return &types.BriefRequest{
		ClientName:     "Ada Lovelace",
		ClientEmail:    "ada@example.com",
		BriefText:      "An introduction to analytical engines.",
		Topic:          "Computing history",
		Tone:           "friendly",
		TargetAudience: "students",
		WordCount:      800,
	}
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, chan []byte) {
	t.Helper()
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/briefs/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		payload, _ := io.ReadAll(r.Body)
		received <- payload
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func TestSubmitBriefSuccess(t *testing.T) {
	srv, received := newServer(t, http.StatusOK, `{"brief_id":"b-42","payment_intent_client_secret":"pi_1_secret_2"}`)

	resp, err := NewClient(srv.URL+"/").SubmitBrief(context.Background(), testBrief())
	require.NoError(t, err)
	assert.Equal(t, "b-42", resp.BriefID)
	assert.Equal(t, "pi_1_secret_2", resp.ClientSecret)

	var sent map[string]any
	require.NoError(t, sonic.Unmarshal(<-received, &sent))
	assert.Equal(t, "Ada Lovelace", sent["client_name"])
	assert.EqualValues(t, 800, sent["word_count"])
	assert.Equal(t, "students", sent["target_audience"])
}

func TestSubmitBriefDoesNotLogClientSecret(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv, _ := newServer(t, http.StatusOK, `{"brief_id":"b-42","payment_intent_client_secret":"pi_1_secret_2"}`)

	resp, err := NewClient(srv.URL).SubmitBrief(context.Background(), testBrief())
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_2", resp.ClientSecret)

	logs := buf.String()
	assert.Contains(t, logs, `"brief_id":"b-42"`)
	assert.Contains(t, logs, `"has_client_secret":true`)
	assert.NotContains(t, logs, "pi_1_secret_2")
	assert.NotContains(t, logs, "secret_2")
}

func TestSubmitBriefMissingSecretIsNotAnError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"brief_id":"b-42"}`)

	resp, err := NewClient(srv.URL).SubmitBrief(context.Background(), testBrief())
	require.NoError(t, err)
	assert.Empty(t, resp.ClientSecret)
}

func TestSubmitBriefServerDetail(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, `{"detail":"Error submitting brief: stripe unavailable"}`)

	_, err := NewClient(srv.URL).SubmitBrief(context.Background(), testBrief())
	require.Error(t, err)
	assert.Equal(t, types.KindNetwork, types.KindOf(err))
	assert.Equal(t, "Error submitting brief: stripe unavailable", types.MessageOf(err, ""))
}

func TestSubmitBriefGenericFailure(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"empty body":       {http.StatusBadGateway, ""},
		"html body":        {http.StatusServiceUnavailable, "<html>down</html>"},
		"validation list":  {http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","client_email"],"msg":"value is not a valid email address"}]}`},
		"blank detail":     {http.StatusBadRequest, `{"detail":"  "}`},
		"not found status": {http.StatusNotFound, `{}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.body)
			_, err := NewClient(srv.URL).SubmitBrief(context.Background(), testBrief())
			require.Error(t, err)
			assert.Equal(t, types.KindNetwork, types.KindOf(err))
			assert.Equal(t, "Failed to submit brief. Please try again.", types.MessageOf(err, ""))
		})
	}
}

func TestSubmitBriefUndecodableSuccess(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `not json`)

	_, err := NewClient(srv.URL).SubmitBrief(context.Background(), testBrief())
	require.Error(t, err)
	assert.Equal(t, types.KindUnhandled, types.KindOf(err))
}

func TestSubmitBriefTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).SubmitBrief(context.Background(), testBrief())
	require.Error(t, err)
	assert.Equal(t, types.KindNetwork, types.KindOf(err))
	assert.Equal(t, "Failed to submit brief. Please try again.", types.MessageOf(err, ""))
}

func TestSubmitBriefUserAgent(t *testing.T) {
	ua := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua <- r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `{"brief_id":"1","payment_intent_client_secret":"s"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, WithUserAgent("briefform/1.0"), WithHTTPClient(srv.Client())).SubmitBrief(context.Background(), testBrief())
	require.NoError(t, err)
	assert.Equal(t, "briefform/1.0", <-ua)
}
