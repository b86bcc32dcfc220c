package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type event struct {
	MatchID string  `msgpack:"match_id"`
	Delta   float64 `msgpack:"delta"`
}

func TestNew_WithoutProjectDiscards(t *testing.T) {
	c, err := New(context.Background(), "")
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.SendMessage(context.Background(), EventMatchRecorded, event{MatchID: "m1"}))
	assert.Error(t, c.SendMessage(context.Background(), EventMatchRecorded, make(chan int)), "unencodable payloads still fail")
}

func TestProcessMessage(t *testing.T) {
	data, err := msgpack.Marshal(event{MatchID: "m1", Delta: 21})
	require.NoError(t, err)

	c := discardClient{}
	var got event
	require.NoError(t, c.ProcessMessage(data, &got))
	assert.Equal(t, event{MatchID: "m1", Delta: 21}, got)

	assert.Error(t, c.ProcessMessage([]byte{0xc1}, &got))
}
