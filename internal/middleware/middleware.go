package middleware

import (
	"net/http"
	"strconv"

	"github.com/docmorph/api/internal/handlers"
	"github.com/docmorph/api/internal/metrics"
	"github.com/docmorph/api/pkg/logging"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logging.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)

var GenerateHandler = Wrap(handlers.GenerateHandler)
var ExportHandler = Wrap(handlers.ExportHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logging.NewLogger("middleware")
	re.logger.Debug("New request received")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	return re
}
