package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgloss/glossary"
)

func TestNewIndexRebuilt(t *testing.T) {
	ix, err := glossary.Compile(map[string]glossary.Entry{
		"ato":    {Text: "ATO"},
		"notext": {},
	}, glossary.WithBuildID("build-7"))
	require.NoError(t, err)

	event := NewIndexRebuilt(ix, []string{"/etc/glossary/base.yaml"})
	assert.Equal(t, "build-7", event.BuildID)
	assert.Equal(t, 2, event.Terms)
	assert.Equal(t, 1, event.LookupOnly)
	fp := ix.Fingerprint()
	assert.Equal(t, fp.String(), event.Fingerprint)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "build-7", decoded["build_id"])
	assert.Contains(t, decoded, "built_at")
	assert.Equal(t, []any{"/etc/glossary/base.yaml"}, decoded["sources"])
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishRebuilt(context.Background(), IndexRebuilt{}))
}

func TestConnect_Unreachable(t *testing.T) {
	// Nothing listens on port 1; the initial connect fails without retrying.
	_, err := Connect("nats://127.0.0.1:1", "", nil)
	assert.Error(t, err)
}
