package notify

import (
	"context"
	"testing"

	"efris-bridge/internal/domain/model"
	"efris-bridge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost_DeliversToCollector(t *testing.T) {
	host := NewHost(logger.NewNop())
	collector := NewCollector()
	ctx := WithCollector(context.Background(), collector)

	host.Throw(ctx, "Stock not available", "Stock")
	host.Msgprint(ctx, "Saved", "Info", "green", true)

	notices := collector.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, model.Notice{Kind: model.NoticeError, Message: "Stock not available", Title: "Stock", Indicator: "red"}, notices[0])
	assert.Equal(t, model.Notice{Kind: model.NoticeMessage, Message: "Saved", Title: "Info", Indicator: "green", Alert: true}, notices[1])
}

func TestHost_WithoutCollector(t *testing.T) {
	host := NewHost(logger.NewNop())

	assert.NotPanics(t, func() {
		host.Msgprint(context.Background(), "dropped", "", "", false)
	})
}

func TestCollector_NoticesIsACopy(t *testing.T) {
	c := NewCollector()
	c.Add(model.Notice{Message: "a"})

	got := c.Notices()
	got[0].Message = "changed"

	assert.Equal(t, "a", c.Notices()[0].Message)
}
