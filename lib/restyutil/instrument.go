package restyutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumentCtx struct {
	output    InstrumentOutput
	idcounter *uint64
}

// InstrumentClient dumps every exchanged http message into `output`, it is
// a no-op when output is nil.
func InstrumentClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}
	var idcounter uint64
	i := instrumentCtx{output: output, idcounter: &idcounter}
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

var unsafeIdChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]+`)

// messageId derives a stable, filesystem safe id from a sequence number and url.
func messageId(seq uint64, rawUrl string) string {
	name := rawUrl
	parsed, err := url.Parse(rawUrl)
	if err == nil {
		name = parsed.Host + parsed.Path
	}
	name = unsafeIdChars.ReplaceAllString(name, "_")
	return fmt.Sprintf("%03d_%s.txt", seq, name)
}

func (i instrumentCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	id := messageId(atomic.AddUint64(i.idcounter, 1), res.Request.URL)
	i.output.Write(id, formatHttpMessage(res))
	slog.DebugContext(
		res.Request.Context(), "dumped http message",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"message_id", id,
	)
	return nil
}

func (i instrumentCtx) onError(req *resty.Request, err error) {
	slog.ErrorContext(
		req.Context(), "request failed",
		"method", req.Method,
		"url", req.URL,
		"err", err,
	)
}
