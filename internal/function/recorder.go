package function

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// responseRecorder buffers what the gin engine writes for one invocation.
type responseRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: http.Header{}}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *responseRecorder) toProxyResponse() events.APIGatewayProxyResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}

	headers := make(map[string]string, len(r.header))
	multi := make(map[string][]string, len(r.header))
	for key, values := range r.header {
		if len(values) == 0 {
			continue
		}
		headers[key] = strings.Join(values, ", ")
		multi[key] = append([]string(nil), values...)
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: multi,
		Body:              r.body.String(),
		IsBase64Encoded:   false,
	}
}
