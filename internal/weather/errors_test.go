package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("fetch: %w", ErrUpstreamUnavailable), "unavailable"},
		{fmt.Errorf("%w: smhi", ErrPayloadTooLarge), "too_large"},
		{&TransportError{Err: context.DeadlineExceeded}, "timeout"},
		{&TransportError{Err: errors.New("connection refused")}, "transport"},
		{&StatusError{StatusCode: 404}, "status"},
		{fmt.Errorf("transform: %w", &ParseError{Err: errors.New("bad")}), "parse"},
		{&StructureError{Path: "timeSeries"}, "structure"},
		{errors.New("other"), "error"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Outcome(tc.err))
	}
}

func TestIsUpstream(t *testing.T) {
	assert.True(t, IsUpstream(fmt.Errorf("x: %w", &TransportError{Err: errors.New("eof")})))
	assert.True(t, IsUpstream(&StatusError{StatusCode: 500}))
	assert.True(t, IsUpstream(ErrUpstreamUnavailable))
	assert.True(t, IsUpstream(ErrPayloadTooLarge))
	assert.False(t, IsUpstream(&ParseError{Err: errors.New("bad")}))
	assert.False(t, IsUpstream(&StructureError{Path: "$"}))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "smhi: unexpected status code 500: Internal Server Error",
		(&StatusError{Provider: "smhi", StatusCode: 500, Body: "Internal Server Error"}).Error())
	assert.Equal(t, "unexpected forecast structure at timeSeries: missing key",
		(&StructureError{Path: "timeSeries", Err: errMissingKey}).Error())
}
