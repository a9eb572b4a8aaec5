package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

// BindNestedOrFlat decodes the request body into obj. Front desk clients
// send either a wrapped payload such as {"payment": {"amount": 40}} or the
// bare object {"amount": 40}; key names the wrapper.
//
// The body is restored afterwards so later binders can read it again.
func BindNestedOrFlat(c *gin.Context, key string, obj any) error {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return fmt.Errorf("read request body: %w", err)
		}
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var wrapped map[string]json.RawMessage
	if json.Unmarshal(body, &wrapped) == nil {
		if inner, ok := wrapped[key]; ok {
			return json.Unmarshal(inner, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
