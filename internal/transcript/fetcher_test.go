package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.0" dur="1.5">The cat sat.</text>
<text start="1.5" dur="1.2">The dog ran &amp;amp; barked.</text>
<text start="2.7" dur="0.5">   </text>
<text start="3.2" dur="1.0">It&amp;#39;s &lt;font color=&quot;#fff&quot;&gt;over&lt;/font&gt;.</text>
</transcript>`

func watchPage(playerJSON string) string {
	return `<html><head><script>var ytInitialPlayerResponse = ` + playerJSON +
		`;var meta = {"x": 1};</script></head><body></body></html>`
}

// newYouTube serves a watch page whose caption tracks point back at the server.
func newYouTube(t *testing.T, player func(base string) string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var timedTextHits atomic.Int32

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, watchPage(player(srv.URL)))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		timedTextHits.Add(1)
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		fmt.Fprint(w, timedTextXML)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &timedTextHits
}

func newTestFetcher(srv *httptest.Server) *Fetcher {
	client := NewClient(srv.Client())
	client.maxElapsedTime = time.Second
	return NewFetcher(client, "en", nil).WithBaseURL(srv.URL)
}

func TestFetch_JoinsSegments(t *testing.T) {
	srv, hits := newYouTube(t, func(base string) string {
		return `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"baseUrl":"` + base + `/api/timedtext?lang=de","languageCode":"de"},
			{"baseUrl":"` + base + `/api/timedtext?lang=en&kind=asr","languageCode":"en","kind":"asr"},
			{"baseUrl":"` + base + `/api/timedtext?lang=en","languageCode":"en"}
		]}},"title":"a \"quoted\" {brace}"}`
	})

	tr, err := newTestFetcher(srv).Fetch(context.Background(), "Gfr50f6ZBvo")
	require.NoError(t, err)

	assert.Equal(t, "Gfr50f6ZBvo", tr.VideoID)
	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, "The cat sat. The dog ran & barked. It's over.", tr.Text)
	assert.Equal(t, 3, tr.Segments)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetch_TranscriptsDisabled(t *testing.T) {
	srv, hits := newYouTube(t, func(string) string {
		return `{"playabilityStatus":{"status":"OK"}}`
	})

	_, err := newTestFetcher(srv).Fetch(context.Background(), "Gfr50f6ZBvo")
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
	assert.EqualValues(t, 0, hits.Load())
}

func TestFetch_NoTrackInLanguage(t *testing.T) {
	srv, _ := newYouTube(t, func(base string) string {
		return `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"baseUrl":"` + base + `/api/timedtext?lang=fr","languageCode":"fr"}
		]}}}`
	})

	_, err := newTestFetcher(srv).Fetch(context.Background(), "Gfr50f6ZBvo")
	assert.ErrorIs(t, err, ErrNoTrack)
}

func TestFetch_Unplayable(t *testing.T) {
	srv, _ := newYouTube(t, func(string) string {
		return `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`
	})

	_, err := newTestFetcher(srv).Fetch(context.Background(), "Gfr50f6ZBvo")
	assert.ErrorIs(t, err, ErrVideoUnavailable)
	assert.Contains(t, err.Error(), "Video unavailable")
}

func TestFetch_MissingPlayerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>consent wall</html>")
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv).Fetch(context.Background(), "Gfr50f6ZBvo")
	assert.ErrorIs(t, err, ErrPlayerResponse)
}

func TestClientGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	client.maxElapsedTime = 10 * time.Second

	body, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientGet_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client()).Get(context.Background(), srv.URL)
	require.Error(t, err)

	var serr *statusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestExtractJSONObject(t *testing.T) {
	got := extractJSONObject([]byte(`{"a":"}\"{","b":{"c":1}};rest`))
	assert.Equal(t, `{"a":"}\"{","b":{"c":1}}`, string(got))

	assert.Nil(t, extractJSONObject([]byte(`{"open":`)))
	assert.Nil(t, extractJSONObject([]byte(`nope`)))
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "en-GB", Kind: "asr", BaseURL: "asr"},
		{LanguageCode: "en-GB", BaseURL: "manual"},
	}
	track, ok := pickTrack(tracks, "en")
	require.True(t, ok)
	assert.Equal(t, "manual", track.BaseURL)

	_, ok = pickTrack(tracks, "es")
	assert.False(t, ok)
}
