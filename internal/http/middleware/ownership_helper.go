package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// extractUserID extracts a user ID from the request based on a defined rule.
// Body ids may be JSON strings or integers.
func extractUserID(c *gin.Context, source string, paramName string) string {
	switch source {
	case "path":
		return c.Param(paramName)
	case "query":
		return c.Query(paramName)
	case "header":
		return c.GetHeader(paramName)
	case "body":
		if c.Request.Body == nil {
			return ""
		}
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return ""
		}
		// handlers bind the same body after us
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var bodyJSON map[string]interface{}
		dec := json.NewDecoder(bytes.NewReader(bodyBytes))
		dec.UseNumber()
		if err := dec.Decode(&bodyJSON); err != nil {
			return ""
		}

		return bodyID(bodyJSON, paramName)
	}
	return ""
}

// bodyID reads name from a decoded body the way encoding/json binds it into
// a struct: keys match case-insensitively. Variants that disagree yield ""
// since the handler would bind whichever came last.
func bodyID(body map[string]interface{}, name string) string {
	id := ""
	for k, v := range body {
		if !strings.EqualFold(k, name) {
			continue
		}
		s := idString(v)
		if s == "" || (id != "" && id != s) {
			return ""
		}
		id = s
	}
	return id
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		if n, err := strconv.ParseUint(id.String(), 10, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
	}
	return ""
}
