package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMrkdwn(t *testing.T) {
	in := "*Ann*\n[PROJ-1](https://jira.example.com/browse/PROJ-1) - Open - Fix [x]\n"
	want := "*Ann*\n<https://jira.example.com/browse/PROJ-1|PROJ-1> - Open - Fix [x]\n"
	assert.Equal(t, want, ToMrkdwn(in))
}

func TestSlackPublisherPostsToChannel(t *testing.T) {
	var (
		gotChannel string
		gotText    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	p := NewSlackPublisher("xoxb-test", "C123", srv.URL+"/")
	err := p.Publish(context.Background(), Message{Text: "[A-1](https://j/browse/A-1) - Open - s\n"})
	require.NoError(t, err)

	assert.Equal(t, "C123", gotChannel)
	assert.Equal(t, "<https://j/browse/A-1|A-1> - Open - s\n", gotText)
	assert.Equal(t, "slack", p.Name())
}

func TestSlackPublisherSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	err := NewSlackPublisher("xoxb-test", "nope", srv.URL+"/").Publish(context.Background(), Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
