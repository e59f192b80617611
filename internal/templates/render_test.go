package templates

import (
	"bytes"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-quake/web"
)

func render(r *Renderer, name string, data any) (string, error) {
	var buf bytes.Buffer
	err := r.RenderToBuffer(&buf, name, data)
	return buf.String(), err
}

func TestRenderEmbedded(t *testing.T) {
	r, err := New(web.FS)
	require.NoError(t, err)

	page, err := render(r, "viewer.html", map[string]string{
		"Title": "Earthquakes", "Container": "map", "ViewURL": "/api/v1/view", "EventsURL": "/api/v1/viewer/events",
	})
	require.NoError(t, err)
	assert.Contains(t, page, `<div id="map" data-view-url="/api/v1/view">`)

	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	status, err := render(r, "status.html", map[string]any{"Kind": "loaded", "Markers": 12, "Boundaries": 3, "At": at})
	require.NoError(t, err)
	assert.Contains(t, status, "12 earthquakes, 3 plate boundaries")
	assert.Contains(t, status, "2026-10-17T09:30:00Z")

	status, err = render(r, "status.html", map[string]any{"Kind": "failed", "Error": "<quakes> 500", "At": at})
	require.NoError(t, err)
	assert.Contains(t, status, "Map unavailable: &lt;quakes&gt; 500")
}

func TestReload(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/page.html":           {Data: []byte(`page {{.}}`)},
		"templates/fragments/frag.html": {Data: []byte(`frag {{rfc3339 .}}`)},
	}
	r, err := New(fsys)
	require.NoError(t, err)

	out, err := render(r, "page.html", "one")
	require.NoError(t, err)
	assert.Equal(t, "page one", out)

	fsys["templates/page.html"] = &fstest.MapFile{Data: []byte(`changed {{.}}`)}
	require.NoError(t, r.Reload())

	out, err = render(r, "page.html", "two")
	require.NoError(t, err)
	assert.Equal(t, "changed two", out)
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New(web.FS)
	require.NoError(t, err)
	_, err = render(r, "missing.html", nil)
	assert.Error(t, err)
}

func TestRenderFragmentTime(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/page.html":           {Data: []byte(`page`)},
		"templates/fragments/frag.html": {Data: []byte(`at {{rfc3339 .}}`)},
	}
	r, err := New(fsys)
	require.NoError(t, err)

	at := time.Date(2026, 10, 17, 11, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	out, err := render(r, "frag.html", at)
	require.NoError(t, err)
	assert.Equal(t, "at 2026-10-17T09:00:00Z", out)
}
