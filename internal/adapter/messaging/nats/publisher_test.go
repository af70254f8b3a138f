package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublish_CancelledContext(t *testing.T) {
	// The context is checked before the connection is used, so a
	// zero-value publisher is enough here.
	p := &Publisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, "listing.created", map[string]string{"listing_id": "l-1"})
	assert.ErrorIs(t, err, context.Canceled)
}
