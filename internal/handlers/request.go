package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"sentinel/internal/common"
	"sentinel/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var jsonMediaTypes = map[string]bool{
	"application/json":             true,
	"application/ld+json":          true,
	"application/merge-patch+json": true,
}

// decodeJSON reads the body into v. Echo's binder rejects the ld+json and
// merge-patch+json media types, so decoding is done here. An empty body
// leaves v untouched.
func decodeJSON(c echo.Context, v interface{}) error {
	req := c.Request()
	if ct := req.Header.Get(echo.HeaderContentType); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !jsonMediaTypes[mediaType] {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Unsupported content type.")
		}
	}
	if req.Body == nil {
		return nil
	}
	err := json.NewDecoder(req.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body.").SetInternal(err)
}

// pathID parses the :id parameter; malformed ids are reported as not found.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return uuid.Nil, services.ErrNotFound
	}
	return id, nil
}

func pageParams(c echo.Context) (services.Page, error) {
	var page services.Page
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > services.MaxPage {
			return page, echo.NewHTTPError(http.StatusBadRequest, "Page should be a positive integer.")
		}
		page.Number = n
	}
	if raw := c.QueryParam("itemsPerPage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, echo.NewHTTPError(http.StatusBadRequest, "itemsPerPage should be a positive integer.")
		}
		page.ItemsPerPage = n
	}
	return page, nil
}
