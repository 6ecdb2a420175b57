package api

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

const (
	headerRequestID = "X-Request-Id"
	mimeOctetStream = "application/octet-stream"
)

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeJSON(c *echo.Context, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

func writeBinary(c *echo.Context, body []byte) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, mimeOctetStream)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

func writeEngineError(c *echo.Context, err error) error {
	status, errType := statusFor(err)
	return writeError(c, status, errType, err.Error())
}

// readBody reads at most limit bytes. A longer body is an invalid request.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, newInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", limit))
	}
	return body, nil
}

func decodeInt16(body []byte) []int16 {
	out := make([]int16, len(body)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(body[i*2:]))
	}
	return out
}

func encodeInt32(v []int32) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(x))
	}
	return out
}

func requestID(c *echo.Context) string {
	return c.Response().Header().Get(headerRequestID)
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}
