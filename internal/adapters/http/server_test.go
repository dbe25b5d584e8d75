package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aldaque/storyloom"
	httpAdapter "github.com/aldaque/storyloom/internal/adapters/http"
	"github.com/aldaque/storyloom/internal/adapters/memory"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	resolver := memory.NewResolver()
	resolver.Register("com.example.view", domain.ModCandidate{Handler: "viewer"})

	sess, err := storyloom.New(storyloom.WithResolver(resolver))
	require.NoError(t, err)

	handler, err := httpAdapter.NewHandler(sess)
	require.NoError(t, err, "embedded openapi spec must load and validate")

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, srv *httptest.Server, story string, body httpAdapter.ExecuteRequest) (*http.Response, domain.ExecuteResult) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/stories/"+story+"/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result domain.ExecuteResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp, result
}

func addModRequest(modName string) httpAdapter.ExecuteRequest {
	return httpAdapter.ExecuteRequest{
		Commands: []domain.Command{{
			Type: domain.CommandAddMod,
			AddMod: &domain.AddMod{
				ModName: modName,
				Intent:  domain.Intent{Action: "com.example.view"},
			},
		}},
	}
}

func TestServer_ExecuteAndList(t *testing.T) {
	srv := newTestServer(t)

	resp, result := execute(t, srv, "kitchen", addModRequest("recipe"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, "kitchen", result.StoryID)

	listResp, err := http.Get(srv.URL + "/stories")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var listing struct {
		Stories []string `json:"stories"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listing))
	assert.Equal(t, []string{"kitchen"}, listing.Stories)
}

func TestServer_ExecuteFailureStatuses(t *testing.T) {
	srv := newTestServer(t)

	// Nonexistent story + non-creating batch -> 404 / INVALID_STORY_ID.
	resp, result := execute(t, srv, "ghost", httpAdapter.ExecuteRequest{
		Commands: []domain.Command{{
			Type:      domain.CommandRemoveMod,
			RemoveMod: &domain.RemoveMod{ModName: "m"},
		}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.StatusInvalidStoryID, result.Status)

	// Removing the only mod -> 409 / STORY_MUST_HAVE_MODS.
	_, result = execute(t, srv, "solo", addModRequest("only"))
	require.Equal(t, domain.StatusOK, result.Status)

	resp, result = execute(t, srv, "solo", httpAdapter.ExecuteRequest{
		Commands: []domain.Command{{
			Type:      domain.CommandRemoveMod,
			RemoveMod: &domain.RemoveMod{ModName: "only"},
		}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.StatusStoryMustHaveMods, result.Status)

	// Malformed command -> 400 / INVALID_COMMAND.
	resp, result = execute(t, srv, "solo", httpAdapter.ExecuteRequest{
		Commands: []domain.Command{{Type: domain.CommandAddMod}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.StatusInvalidCommand, result.Status)
}

func TestServer_CreateOptionsApplied(t *testing.T) {
	srv := newTestServer(t)

	req := addModRequest("card")
	req.Options = &domain.StoryOptions{DisplayName: "Morning Briefing"}

	resp, result := execute(t, srv, "morning", req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusOK, result.Status)
}

func TestServer_DeleteStory(t *testing.T) {
	srv := newTestServer(t)

	_, result := execute(t, srv, "doomed", addModRequest("m"))
	require.Equal(t, domain.StatusOK, result.Status)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/stories/doomed", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Idempotent: deleting again still succeeds.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServer_HealthAndSpec(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))
}

func TestServer_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/stories/x/execute", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
