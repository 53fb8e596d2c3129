package main

import (
	"context"
	"io"
	"log/slog"

	"transitcatalogue.org/internal/requests"
)

// RunStdio answers one request document read from in, writing the response
// array to out.
func RunStdio(ctx context.Context, in io.Reader, out io.Writer, logger *slog.Logger) error {
	doc, err := requests.Decode(in)
	if err != nil {
		return err
	}
	responses, err := requests.Process(ctx, doc, logger)
	if err != nil {
		return err
	}
	return requests.Encode(out, responses)
}
