package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

func TestPostSendsEmbeds(t *testing.T) {
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, WithUsername("Campus Attendance"))
	err := client.Post(context.Background(), Message{Embeds: []Embed{{
		Title:  "Daily Goals",
		Color:  ColorGreen,
		Fields: []Field{{Name: "Present", Value: "53", Inline: true}},
		Footer: &Footer{Text: "footer"},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "Campus Attendance", received.Username)
	require.Len(t, received.Embeds, 1)
	assert.Equal(t, ColorGreen, received.Embeds[0].Color)
	assert.Equal(t, "53", received.Embeds[0].Fields[0].Value)
}

func TestPostAcceptsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, time.Second).Post(context.Background(), Message{}))
}

func TestPostRejectsOtherStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Post(context.Background(), Message{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTransport.Code))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "slow down", statusErr.Body)
}

func TestPostUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url, time.Second).Post(context.Background(), Message{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTransport.Code))
}
