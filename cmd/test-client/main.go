package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var serviceURL = "http://localhost:8080"
var testTimeout = 300 // секунд: загрузка видео идет синхронно
var testMode = ""     // "upload" или "list" или "" (все тесты)

// TestClient представляет тестовый клиент для REST API
type TestClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
	videoPath  string
}

// NewTestClient создает новый тестовый клиент
func NewTestClient(token, videoPath string) *TestClient {
	return &TestClient{
		baseURL: strings.TrimRight(normalizeURL(serviceURL), "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(testTimeout) * time.Second,
		},
		token:     token,
		videoPath: videoPath,
	}
}

// normalizeURL добавляет схему, если ее нет
func normalizeURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// do выполняет запрос и разбирает JSON ответ
func (c *TestClient) do(req *http.Request, response interface{}) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return resp, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if response != nil {
		if err := json.Unmarshal(respBody, response); err != nil {
			return resp, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return resp, nil
}

// RunTests запускает все тесты
func (c *TestClient) RunTests() {
	fmt.Println("🚀 Запуск тестов для MediaVault Backend")
	fmt.Printf("🔗 URL: %s\n", c.baseURL)
	fmt.Printf("⏱️  Таймаут: %d секунд\n\n", testTimeout)

	if testMode == "" || testMode == "upload" {
		c.testUnauthorizedUpload()
		c.testUploadVideo()
	}
	if testMode == "" || testMode == "list" {
		c.testListVideos()
	}

	fmt.Println("✅ Все тесты завершены!")
}

// printResult выводит результат теста
func (c *TestClient) printResult(testName string, success bool, details string) {
	status := "❌ ОШИБКА"
	if success {
		status = "✅ УСПЕХ"
	}
	fmt.Printf("[%s] %s\n", status, testName)
	if details != "" {
		fmt.Printf("   %s\n", details)
	}
	fmt.Println()
}

func (c *TestClient) uploadRequest(title string) (*http.Request, error) {
	data, err := os.ReadFile(c.videoPath)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(c.videoPath))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/api/video-upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

// testUnauthorizedUpload проверяет, что без токена загрузка отклоняется
func (c *TestClient) testUnauthorizedUpload() {
	fmt.Println("🔐 Тестирование загрузки без токена...")

	req, err := http.NewRequest("POST", c.baseURL+"/api/video-upload", strings.NewReader(""))
	if err != nil {
		c.printResult("Загрузка без токена", false, err.Error())
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.printResult("Загрузка без токена", false, err.Error())
		return
	}
	resp.Body.Close()

	c.printResult("Загрузка без токена", resp.StatusCode == http.StatusUnauthorized, fmt.Sprintf("Статус: %d", resp.StatusCode))
}

// testUploadVideo загружает файл и проверяет запись в каталоге
func (c *TestClient) testUploadVideo() {
	fmt.Println("📹 Тестирование загрузки видео...")

	if c.token == "" || c.videoPath == "" {
		c.printResult("Загрузка видео", false, "Нужны AUTH_TOKEN и VIDEO_PATH")
		return
	}

	req, err := c.uploadRequest(fmt.Sprintf("smoke %d", time.Now().Unix()))
	if err != nil {
		c.printResult("Загрузка видео", false, fmt.Sprintf("Ошибка: %v", err))
		return
	}

	var record map[string]interface{}
	if _, err := c.do(req, &record); err != nil {
		c.printResult("Загрузка видео", false, fmt.Sprintf("Ошибка: %v", err))
		return
	}

	c.printResult("Загрузка видео", true, fmt.Sprintf("ID: %v, contentId: %v, размер: %v -> %v байт",
		record["id"], record["contentId"], record["originalSizeBytes"], record["compressedSizeBytes"]))
}

// testListVideos проверяет порядок каталога
func (c *TestClient) testListVideos() {
	fmt.Println("📚 Тестирование списка видео...")

	req, err := http.NewRequest("GET", c.baseURL+"/api/videos?limit=20", nil)
	if err != nil {
		c.printResult("Список видео", false, err.Error())
		return
	}

	var records []map[string]interface{}
	resp, err := c.do(req, &records)
	if err != nil {
		c.printResult("Список видео", false, fmt.Sprintf("Ошибка: %v", err))
		return
	}

	ordered := true
	for i := 1; i < len(records); i++ {
		prev, _ := time.Parse(time.RFC3339Nano, fmt.Sprint(records[i-1]["createdAt"]))
		cur, _ := time.Parse(time.RFC3339Nano, fmt.Sprint(records[i]["createdAt"]))
		if cur.After(prev) {
			ordered = false
		}
	}

	c.printResult("Список видео", ordered, fmt.Sprintf("Записей: %d, следующая страница: %q", len(records), resp.Header.Get("X-Next-Cursor")))
}

func main() {
	if url := os.Getenv("SERVICE_URL"); url != "" {
		serviceURL = url
	}

	if timeout := os.Getenv("TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			testTimeout = t
		}
	}

	if mode := os.Getenv("TEST_MODE"); mode != "" {
		testMode = mode
	}

	client := NewTestClient(os.Getenv("AUTH_TOKEN"), os.Getenv("VIDEO_PATH"))
	if client.baseURL == "" {
		log.Fatal("SERVICE_URL is empty")
	}

	client.RunTests()
}
