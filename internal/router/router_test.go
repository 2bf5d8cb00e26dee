package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/blinder/internal/config"
	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/realtime"
	"github.com/oggyb/blinder/internal/router"
	"github.com/oggyb/blinder/internal/testutil"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	appCtx := testutil.NewTestApp(t)
	require.NoError(t, db.SeedMinimalTestData(appCtx.DB))

	cfg := &config.Config{}
	cfg.App.Name = "blinder-test"
	cfg.Auth.JWTSecret = secret
	cfg.HTTP.CORSOrigins = []string{"*"}
	return router.New(cfg, appCtx, router.NewServices(appCtx))
}

func token(t *testing.T, email string, method jwt.SigningMethod, key any) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func bearer(t *testing.T, user int) string {
	t.Helper()
	return "Bearer " + token(t, fmt.Sprintf("u%d@test.edu", user), jwt.SigningMethodHS256, []byte(secret))
}

func do(t *testing.T, r http.Handler, method, path, auth string, body any) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

// matchUsers makes users 1 and 2 like each other and returns the match id.
func matchUsers(t *testing.T, r http.Handler) string {
	t.Helper()
	code, body := do(t, r, http.MethodPost, "/match/swipe", bearer(t, 1), gin.H{"target_user_id": "2", "action": "like"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["match"])
	assert.Equal(t, "Swipe kaydedildi", body["message"])

	code, body = do(t, r, http.MethodPost, "/match/swipe", bearer(t, 2), gin.H{"target_user_id": 1, "action": "like"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["match"])
	assert.Equal(t, "Match oluştu!", body["message"])

	code, body = do(t, r, http.MethodGet, "/match/my-matches", bearer(t, 1), nil)
	require.Equal(t, http.StatusOK, code)
	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	m := matches[0].(map[string]any)
	assert.Equal(t, "2", m["user_id"])
	assert.Equal(t, "user2", m["name"])
	return m["match_id"].(string)
}

func TestHealthcheck(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestAuth(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, "u1@test.edu", jwt.SigningMethodHS256, []byte("other")), http.StatusUnauthorized},
		{"alg none", "Bearer " + token(t, "u1@test.edu", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), http.StatusUnauthorized},
		{"unknown user", "Bearer " + token(t, "ghost@test.edu", jwt.SigningMethodHS256, []byte(secret)), http.StatusNotFound},
		{"valid", bearer(t, 1), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do(t, r, http.MethodGet, "/match/potential", tt.auth, nil)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestPotential(t *testing.T) {
	r := newRouter(t)

	code, body := do(t, r, http.MethodGet, "/match/potential", bearer(t, 1), nil)
	require.Equal(t, http.StatusOK, code)
	list := body["potential_matches"].([]any)
	require.Len(t, list, 1)
	p := list[0].(map[string]any)
	assert.Equal(t, "2", p["user_id"])
	assert.NotContains(t, p, "email")
	assert.NotContains(t, p, "password_hash")
}

func TestSwipe_Errors(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name string
		body any
		want int
		msg  string
	}{
		{"self swipe", gin.H{"target_user_id": "1", "action": "like"}, http.StatusBadRequest, "cannot swipe on yourself"},
		{"bad action", gin.H{"target_user_id": "2", "action": "love"}, http.StatusBadRequest, "action must be 'like' or 'dislike'"},
		{"bad id", gin.H{"target_user_id": "abc", "action": "like"}, http.StatusBadRequest, ""},
		{"missing id", gin.H{"action": "like"}, http.StatusBadRequest, ""},
		{"unknown user", gin.H{"target_user_id": "99", "action": "like"}, http.StatusNotFound, "user not found"},
		{"bad body", "not-an-object", http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, r, http.MethodPost, "/match/swipe", bearer(t, 1), tt.body)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, body["error"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}
}

func TestMatchMessageUnmatchFlow(t *testing.T) {
	r := newRouter(t)
	matchID := matchUsers(t, r)

	code, body := do(t, r, http.MethodPost, "/message/send", bearer(t, 1), gin.H{"match_id": matchID, "message_text": "selam"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Mesaj gönderildi!", body["message"])
	assert.NotEmpty(t, body["message_id"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)

	code, body = do(t, r, http.MethodGet, "/message/conversation?match_id="+matchID, bearer(t, 2), nil)
	require.Equal(t, http.StatusOK, code)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "selam", msgs[0].(map[string]any)["message_text"])
	assert.Equal(t, "1", msgs[0].(map[string]any)["sender_id"])

	// non-party
	code, _ = do(t, r, http.MethodGet, "/message/conversation?match_id="+matchID, bearer(t, 3), nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = do(t, r, http.MethodPost, "/message/send", bearer(t, 3), gin.H{"match_id": matchID, "message_text": "hi"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = do(t, r, http.MethodPost, "/match/unmatch", bearer(t, 3), gin.H{"match_id": matchID})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = do(t, r, http.MethodPost, "/message/send", bearer(t, 1), gin.H{"match_id": matchID, "message_text": "   "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "message_text is required", body["error"])

	code, body = do(t, r, http.MethodPost, "/match/unmatch", bearer(t, 2), gin.H{"match_id": matchID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Eşleşme başarıyla kaldırıldı.", body["message"])

	code, _ = do(t, r, http.MethodPost, "/match/unmatch", bearer(t, 2), gin.H{"match_id": matchID})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, r, http.MethodPost, "/match/unmatch", bearer(t, 2), gin.H{"match_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, code)

	for _, u := range []int{1, 2} {
		code, body = do(t, r, http.MethodGet, "/match/potential", bearer(t, u), nil)
		require.Equal(t, http.StatusOK, code)
		for _, p := range body["potential_matches"].([]any) {
			id := p.(map[string]any)["user_id"]
			assert.NotContains(t, []string{"1", "2"}, id)
		}
	}

	code, body = do(t, r, http.MethodGet, "/match/my-matches", bearer(t, 1), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["matches"])
}

func TestLikedYou(t *testing.T) {
	r := newRouter(t)

	code, _ := do(t, r, http.MethodPost, "/match/swipe", bearer(t, 1), gin.H{"target_user_id": "2", "action": "like"})
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, r, http.MethodGet, "/match/liked-you", bearer(t, 2), nil)
	require.Equal(t, http.StatusOK, code)
	likers := body["likers"].([]any)
	require.Len(t, likers, 1)
	assert.Equal(t, "1", likers[0].(map[string]any)["user_id"])
	assert.NotContains(t, body, "next_pagination_token")

	code, body = do(t, r, http.MethodGet, "/match/liked-you/new", bearer(t, 2), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["likers"], 1)

	code, body = do(t, r, http.MethodGet, "/match/liked-you/count", bearer(t, 2), nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, _ = do(t, r, http.MethodGet, "/match/liked-you?pagination_token=not-a-token", bearer(t, 2), nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProfile(t *testing.T) {
	r := newRouter(t)

	code, body := do(t, r, http.MethodGet, "/auth/profile", bearer(t, 1), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profil bilgileri alındı", body["message"])
	assert.Equal(t, "u1@test.edu", body["user"].(map[string]any)["email"])

	update := gin.H{
		"birthdate":           "1999-03-25",
		"university":          "Boğaziçi",
		"university_location": "X",
		"gender":              "Erkek",
		"gender_preference":   "Kadın",
		"height":              180,
		"relationship_goal":   "Arkadaşlık",
		"likes":               []string{"müzik"},
		"values":              []string{"saygı"},
		"alcohol":             "Hayır",
		"smoking":             "Hayır",
		"religion":            "İnançlı",
		"political_view":      "Apolitik",
		"favorite_food":       []string{"lahmacun"},
		"about":               "selam",
	}
	code, body = do(t, r, http.MethodPost, "/auth/update-profile", bearer(t, 1), update)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profil güncellendi", body["message"])
	assert.Equal(t, "Koç", body["data"].(map[string]any)["zodiac_sign"])

	delete(update, "about")
	code, body = do(t, r, http.MethodPost, "/auth/update-profile", bearer(t, 1), update)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "about is required and cannot be empty", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t)
	code, _ := do(t, r, http.MethodPost, "/match/swipe", bearer(t, 1), gin.H{"target_user_id": "2", "action": "dislike"})
	require.Equal(t, http.StatusOK, code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `blinder_swipes_total{action="dislike"}`)
	assert.Contains(t, out, `blinder_http_request_duration_seconds_count{method="POST",route="/match/swipe",status="200"}`)
}

func TestMessageStream(t *testing.T) {
	r := newRouter(t)
	matchID := matchUsers(t, r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/message/ws?match_id=" + matchID + "&token="

	// non-party is refused before the upgrade
	_, resp, err := websocket.DefaultDialer.Dial(base+token(t, "u3@test.edu", jwt.SigningMethodHS256, []byte(secret)), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+token(t, "u2@test.edu", jwt.SigningMethodHS256, []byte(secret)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var hello realtime.Event
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, realtime.EventInfo, hello.Type)

	code, _ := do(t, r, http.MethodPost, "/message/send", bearer(t, 1), gin.H{"match_id": matchID, "message_text": "canlı"})
	require.Equal(t, http.StatusOK, code)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt realtime.Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, realtime.EventMessage, evt.Type)
	assert.Equal(t, "1", evt.From)
	assert.Equal(t, "canlı", evt.Data.(map[string]any)["message_text"])
}

func TestRegister(t *testing.T) {
	r := newRouter(t)

	code, body := do(t, r, http.MethodPost, "/auth/register", "", gin.H{"email": "yeni@test.edu", "name": "yeni", "password": "secret1"})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, body["user_id"])

	code, _ = do(t, r, http.MethodPost, "/auth/register", "", gin.H{"email": "yeni@test.edu", "name": "again", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = do(t, r, http.MethodGet, "/auth/profile", "Bearer "+token(t, "yeni@test.edu", jwt.SigningMethodHS256, []byte(secret)), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "yeni", body["user"].(map[string]any)["name"])
}

func TestRegister_MixedCaseEmailAuthenticates(t *testing.T) {
	r := newRouter(t)

	code, _ := do(t, r, http.MethodPost, "/auth/register", "", gin.H{"email": "Mixed@Test.edu", "name": "mixed", "password": "secret1"})
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, r, http.MethodGet, "/auth/profile", "Bearer "+token(t, "Mixed@Test.edu", jwt.SigningMethodHS256, []byte(secret)), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mixed@test.edu", body["user"].(map[string]any)["email"])
}

func TestUniversities(t *testing.T) {
	r := newRouter(t)

	for _, auth := range []string{"", bearer(t, 1)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/universities", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var groups []struct {
			Universities []string `json:"universities"`
			Location     string   `json:"location"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
		require.Len(t, groups, 2)
		assert.Equal(t, "X", groups[0].Location)
		assert.Equal(t, []string{"Uni A", "Uni B"}, groups[0].Universities)
		assert.Equal(t, "Y", groups[1].Location)
	}
}
