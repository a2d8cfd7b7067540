package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinisterIDsRoundTrip(t *testing.T) {
	ids := []string{"v3", "v1", "v2"}
	joined := JoinMinisterIDs(ids)
	assert.Equal(t, "v3,v1,v2", joined)
	assert.Equal(t, ids, SplitMinisterIDs(joined), "order must survive the encoding")
}

func TestSplitMinisterIDsEmpty(t *testing.T) {
	got := SplitMinisterIDs("")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
