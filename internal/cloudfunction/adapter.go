package cloudfunction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/lumiforge/mediavault-backend/internal/bootstrap"
	"github.com/lumiforge/mediavault-backend/internal/config"
)

// CloudFunctionRequest структура запроса от API Gateway
type CloudFunctionRequest struct {
	HTTPMethod        string            `json:"httpMethod"`
	Headers           map[string]string `json:"headers"`
	Path              string            `json:"path"`
	QueryStringParams map[string]string `json:"queryStringParameters"`
	Body              string            `json:"body"`
	IsBase64Encoded   bool              `json:"isBase64Encoded"`
}

// CloudFunctionResponse структура ответа для API Gateway
type CloudFunctionResponse struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

var (
	router http.Handler
	initMu sync.Mutex
)

// initialize собирает роутер. Переменная для подмены в тестах.
var initialize = func(ctx context.Context) (http.Handler, error) {
	h, _, err := bootstrap.Initialize(ctx, config.Load())
	return h, err
}

// Handler - главная функция для Cloud Function
func Handler(ctx context.Context, request []byte) ([]byte, error) {
	h, err := getRouter(ctx)
	if err != nil {
		return respondError(http.StatusInternalServerError, "Failed to initialize: "+err.Error())
	}

	return serve(h, request)
}

// getRouter инициализирует роутер при холодном старте. После ошибки следующий вызов пробует снова.
func getRouter(ctx context.Context) (http.Handler, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if router != nil {
		return router, nil
	}

	h, err := initialize(ctx)
	if err != nil {
		slog.Error("Cloud Function initialization failed", "error", err)
		return nil, err
	}

	router = h
	slog.Info("Cloud Function initialized successfully")
	return router, nil
}

// serve прогоняет один запрос API Gateway через роутер
func serve(h http.Handler, request []byte) ([]byte, error) {
	var cfReq CloudFunctionRequest
	if err := json.Unmarshal(request, &cfReq); err != nil {
		slog.Error("Failed to parse request", "error", err)
		return respondError(http.StatusBadRequest, "Invalid request format")
	}

	slog.Info("Processing request",
		"method", cfReq.HTTPMethod,
		"path", cfReq.Path,
	)

	httpReq, err := buildHTTPRequest(&cfReq)
	if err != nil {
		slog.Error("Failed to build HTTP request", "error", err)
		return respondError(http.StatusBadRequest, "Failed to build request")
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httpReq)

	return buildCloudFunctionResponse(rr), nil
}

// buildHTTPRequest - создание HTTP запроса из Cloud Function request
func buildHTTPRequest(cfReq *CloudFunctionRequest) (*http.Request, error) {
	// multipart загрузки приходят от шлюза в base64
	var bodyReader io.Reader
	if cfReq.Body != "" {
		if cfReq.IsBase64Encoded {
			raw, err := base64.StdEncoding.DecodeString(cfReq.Body)
			if err != nil {
				return nil, err
			}
			bodyReader = bytes.NewReader(raw)
		} else {
			bodyReader = bytes.NewBufferString(cfReq.Body)
		}
	}

	req, err := http.NewRequest(cfReq.HTTPMethod, cfReq.Path, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfReq.Headers {
		req.Header.Set(key, value)
	}

	if len(cfReq.QueryStringParams) > 0 {
		q := req.URL.Query()
		for key, value := range cfReq.QueryStringParams {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req, nil
}

// buildCloudFunctionResponse - создание Cloud Function response из HTTP response
func buildCloudFunctionResponse(rr *httptest.ResponseRecorder) []byte {
	headers := make(map[string]string)
	for key, values := range rr.Header() {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	response := CloudFunctionResponse{
		StatusCode:      rr.Code,
		Headers:         headers,
		Body:            rr.Body.String(),
		IsBase64Encoded: false,
	}

	respData, _ := json.Marshal(response)
	return respData
}

// respondError - вспомогательная функция для ответа об ошибке
func respondError(statusCode int, message string) ([]byte, error) {
	body, _ := json.Marshal(map[string]string{"error": message})

	return json.Marshal(CloudFunctionResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	})
}
