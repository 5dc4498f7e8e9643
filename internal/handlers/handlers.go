package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/linkshort/internal/auth"
	"github.com/avolkov/linkshort/internal/config"
	"github.com/avolkov/linkshort/internal/models"
	"github.com/avolkov/linkshort/internal/services"
	"github.com/avolkov/linkshort/internal/storage"
	"github.com/avolkov/linkshort/internal/util"
	"github.com/go-chi/chi/v5"
)

type (
	apiRequest struct {
		URL        string  `json:"url"`
		CustomCode string  `json:"custom_code,omitempty"`
		ExpiresAt  string  `json:"expires_at,omitempty"`
		Password   *string `json:"password,omitempty"`
	}
	apiResponse struct {
		Result string `json:"result,omitempty"`
		Error  string `json:"error,omitempty"`
	}
	batchRequestItem struct {
		CorrelationID string `json:"correlation_id"`
		OriginalURL   string `json:"original_url"`
	}
	batchResponseItem struct {
		CorrelationID string `json:"correlation_id"`
		ShortURL      string `json:"short_url"`
	}
	updateRequest struct {
		ExpiresAt string  `json:"expires_at"`
		Password  *string `json:"password,omitempty"`
	}
	analyticsResponse struct {
		Records []models.ShortLink `json:"records"`
	}
)

var StoreHandler storage.StoreHandler

func errorStatus(err error) int {
	switch {
	case errors.As(err, &models.ConflictError{}):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAccessDenied):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func shortURL(code string) string {
	return config.Current.BaseURL + "/" + code
}

func Root(w http.ResponseWriter, _ *http.Request) {
	util.JSONResponse(w, map[string]string{"message": "Welcome to URL Shortener"}, http.StatusOK)
}

func PingStore(w http.ResponseWriter, r *http.Request) {
	if err := StoreHandler.Ping(r.Context()); err != nil {
		http.Error(w, "Store connection failed.", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Shorten is the plain-text surface: the body is the URL, the response the
// short URL.
func Shorten(w http.ResponseWriter, req *http.Request) {
	bodyURL, err := parseURLFromBody(req.Body)
	if err != nil {
		http.Error(w, "You must provide a valid URL.", http.StatusBadRequest)
		return
	}

	params := services.ShortenParams{URL: bodyURL, OwnerID: auth.GetUserID(req.Context())}
	code, err := services.Shorten(StoreHandler, req.Context(), params)
	if err != nil {
		var conflict models.ConflictError
		if errors.As(err, &conflict) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(shortURL(conflict.Code)))
		} else {
			http.Error(w, err.Error(), errorStatus(err))
		}
		return
	}

	shortenCount.Inc()
	w.WriteHeader(http.StatusCreated)
	if _, err = w.Write([]byte(shortURL(code))); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// ShortenAPI is the JSON surface and the only one accepting custom codes,
// expiry and a password.
func ShortenAPI(w http.ResponseWriter, req *http.Request) {
	var requestJSON apiRequest
	if err := json.NewDecoder(req.Body).Decode(&requestJSON); err != nil {
		util.JSONResponse(w, apiResponse{Error: "Invalid request format."}, http.StatusBadRequest)
		return
	}

	if _, err := util.ParseURL(requestJSON.URL); err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}

	expiresAt, err := parseExpiry(requestJSON.ExpiresAt)
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}

	params := services.ShortenParams{
		URL:        requestJSON.URL,
		OwnerID:    auth.GetUserID(req.Context()),
		CustomCode: requestJSON.CustomCode,
		ExpiresAt:  expiresAt,
		Password:   requestJSON.Password,
	}
	code, err := services.Shorten(StoreHandler, req.Context(), params)
	if err != nil {
		var conflict models.ConflictError
		if errors.As(err, &conflict) {
			util.JSONResponse(w, apiResponse{Result: shortURL(conflict.Code)}, http.StatusConflict)
		} else {
			util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		}
		return
	}

	shortenCount.Inc()
	util.JSONResponse(w, apiResponse{Result: shortURL(code)}, http.StatusCreated)
}

// ShortenAPIBatch creates links in bulk, enterprise accounts only.
func ShortenAPIBatch(w http.ResponseWriter, req *http.Request) {
	ownerID := auth.GetUserID(req.Context())
	if err := services.AuthorizeBulk(StoreHandler, req.Context(), ownerID); err != nil {
		util.JSONResponse(w, apiResponse{Error: "Bulk shortening requires an enterprise account."}, errorStatus(err))
		return
	}

	var items []batchRequestItem
	if err := json.NewDecoder(req.Body).Decode(&items); err != nil {
		util.JSONResponse(w, apiResponse{Error: "Invalid request format."}, http.StatusBadRequest)
		return
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.OriginalURL)
	}

	codes, err := services.ShortenBatch(StoreHandler, req.Context(), ownerID, urls)
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		return
	}

	response := make([]batchResponseItem, 0, len(codes))
	for i, code := range codes {
		shortenCount.Inc()
		response = append(response, batchResponseItem{
			CorrelationID: items[i].CorrelationID,
			ShortURL:      shortURL(code),
		})
	}
	util.JSONResponse(w, response, http.StatusCreated)
}

// Expand redirects a short code to its target. A password-protected link
// takes the password from the query string.
func Expand(w http.ResponseWriter, req *http.Request) {
	code := strings.TrimPrefix(req.URL.Path, "/")
	storedURL, err := services.Resolve(StoreHandler, req.Context(), code, req.URL.Query().Get("password"))
	if err != nil {
		if errors.Is(err, models.ErrAccessDenied) {
			http.Error(w, "This link requires a password.", http.StatusUnauthorized)
			return
		}
		http.Error(w, fmt.Sprintf("Invalid ID: %s", code), errorStatus(err))
		return
	}

	redirectCount.Inc()
	w.Header().Set("Location", storedURL)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func DeleteURL(w http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")
	err := services.SoftDelete(StoreHandler, req.Context(), code, auth.GetUserID(req.Context()))
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		return
	}
	util.JSONResponse(w, map[string]string{
		"message": "Short code deleted successfully",
		"code":    code,
	}, http.StatusOK)
}

func UpdateURL(w http.ResponseWriter, req *http.Request) {
	var requestJSON updateRequest
	if err := json.NewDecoder(req.Body).Decode(&requestJSON); err != nil {
		util.JSONResponse(w, apiResponse{Error: "Invalid request format."}, http.StatusBadRequest)
		return
	}

	expiresAt, err := parseExpiry(requestJSON.ExpiresAt)
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}

	password := requestJSON.Password
	if password != nil && *password == "" {
		password = nil
	}

	code := chi.URLParam(req, "code")
	err = services.Update(StoreHandler, req.Context(), code, auth.GetUserID(req.Context()), expiresAt, password)
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		return
	}
	util.JSONResponse(w, apiResponse{Result: shortURL(code)}, http.StatusOK)
}

func UserURLs(w http.ResponseWriter, req *http.Request) {
	urls, err := services.List(StoreHandler, req.Context(), auth.GetUserID(req.Context()))
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		return
	}
	if len(urls) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	util.JSONResponse(w, urls, http.StatusOK)
}

func BatchDeleteURLs(w http.ResponseWriter, req *http.Request) {
	var codes []string
	if err := json.NewDecoder(req.Body).Decode(&codes); err != nil {
		util.JSONResponse(w, apiResponse{Error: "Invalid request format."}, http.StatusBadRequest)
		return
	}

	err := services.BatchDelete(StoreHandler, req.Context(), auth.GetUserID(req.Context()), codes)
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func Analytics(w http.ResponseWriter, req *http.Request) {
	records, err := services.Recent(StoreHandler, req.Context(), 0)
	if err != nil {
		util.JSONResponse(w, apiResponse{Error: err.Error()}, errorStatus(err))
		return
	}
	if records == nil {
		records = []models.ShortLink{}
	}
	util.JSONResponse(w, analyticsResponse{Records: records}, http.StatusOK)
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry: %s", value)
	}
	return &parsed, nil
}

func parseURLFromBody(body io.ReadCloser) (string, error) {
	defer body.Close()
	bodyData, err := io.ReadAll(body)
	if err != nil || len(bodyData) == 0 {
		return "", errors.New("empty or invalid body")
	}
	urlStr := string(bodyData)
	if _, err := util.ParseURL(urlStr); err != nil {
		return "", err
	}
	return urlStr, nil
}
