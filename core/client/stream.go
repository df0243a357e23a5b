package client

import (
	"context"
	"io"
	"strings"

	"github.com/aioverlay/aibridge/internal/utils"
	"github.com/aioverlay/aibridge/providers/ai"
)

// Sink receives stream events in emission order. The bridge has no knowledge
// of how events are rendered or persisted; a UI channel forwarder is typical.
type Sink func(ai.StreamEvent)

// CompleteStream performs one streaming completion, relaying decoded events
// to sink in strict arrival order. Pre-stream failures (missing key, network
// failure, non-2xx before any body) are returned as an error with no events
// emitted. Once the stream begins, exactly one terminal event follows zero
// or more token events: Done on EOF (or the [DONE] sentinel), Cancelled when
// the broadcaster wins the race. A transport failure mid-stream is returned
// as a *ai.NetworkError without a terminal event.
func (c *Client) CompleteStream(ctx context.Context, request ai.Request, sink Sink) error {
	adapter, err := adapterFor(request)
	if err != nil {
		return err
	}
	if adapter.RequiresKey() {
		if err := ai.ValidateKey(request.APIKey, adapter.Name()); err != nil {
			return err
		}
	}

	promptText := ai.BuildPrompt(request)
	payload, err := adapter.BuildStreamPayload(request, promptText)
	if err != nil {
		return err
	}

	c.logger.Debug("opening completion stream",
		"provider", adapter.Name(),
		"url", adapter.EndpointURL(),
		"payload", utils.JSONToString(payload))

	subscription := c.canceller.Subscribe()

	reqCtx, cancelRequest := context.WithCancel(ctx)
	defer cancelRequest()

	response, err := utils.DoPostStream(reqCtx, c.http, adapter.EndpointURL(), adapter.Auth(request.APIKey), payload)
	if err != nil {
		return networkError(adapter.Name(), err)
	}

	// An error status received before any streaming body is a plain status
	// error, not a stream event.
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body := utils.ReadErrorBody(response)
		_, err := adapter.ParseResponse(response.StatusCode, body)
		return err
	}

	type scanResult struct {
		data string
		err  error
	}
	results := make(chan scanResult)

	// The scanner blocks on socket reads, so it runs in its own goroutine
	// and the decode loop below races its output against cancellation.
	// Cancelling reqCtx unblocks the read and lets the goroutine exit.
	go func() {
		defer utils.CloseWithLog(response.Body)
		scanner := utils.NewSSEScanner(response.Body)
		for {
			data, err := scanner.Next()
			select {
			case results <- scanResult{data: data, err: err}:
			case <-reqCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	model := effectiveModel(request, adapter)
	var accumulator strings.Builder

	for {
		select {
		case result := <-results:
			if result.err == io.EOF {
				sink(ai.DoneEvent(accumulator.String(), model))
				return nil
			}
			if result.err != nil {
				return networkError(adapter.Name(), result.err)
			}
			if delta, ok := adapter.ParseStreamLine([]byte(result.data)); ok {
				accumulator.WriteString(delta)
				sink(ai.TokenEvent(delta))
			}

		case <-subscription.Changed():
			cancelRequest()
			c.logger.Debug("stream cancelled", "provider", adapter.Name())
			sink(ai.CancelledEvent())
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
